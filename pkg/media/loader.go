package media

import (
	"fmt"

	"github.com/go-drift/mediakit/pkg/channel"
	"github.com/go-drift/mediakit/pkg/errors"
)

// assetLoader resolves a VideoSource into a loaded, playable asset on the
// capability without blocking the caller.
type assetLoader struct {
	cap Capability
}

// Load resolves src and loads the required descriptive properties. It
// returns immediately; done is invoked later on the main execution context
// with either a loaded, playable asset or the failure that aborted the
// load. Property loading itself runs on the capability's background
// context; the marshal back through Dispatch is the only suspension point.
func (l *assetLoader) Load(src VideoSource, done func(Asset, error)) {
	asset, err := l.open(src)
	if err != nil {
		err := err
		channel.Dispatch(func() { done(nil, err) })
		return
	}

	asset.LoadProperties(RequiredProperties, func() {
		// Arbitrary goroutine. Inspect each property's own status before
		// marshaling the outcome back to the main context.
		err := checkLoadedAsset(asset)
		channel.Dispatch(func() { done(asset, err) })
	})
}

// open turns the source into an asset handle. Network sources forward
// request headers only when the mapping is non-empty; an empty-but-present
// header map is never sent through to the capability.
func (l *assetLoader) open(src VideoSource) (Asset, error) {
	location := src.Path
	if src.Type == SourceTypeAsset {
		resolved, err := l.cap.ResolveAssetPath(src.Path)
		if err != nil {
			return nil, fmt.Errorf("unable to resolve asset %q: %w", src.Path, err)
		}
		location = resolved
	}

	var (
		asset Asset
		err   error
	)
	if src.Type == SourceTypeNetwork && src.HasHeaders() {
		asset, err = l.cap.OpenAssetWithHeaders(location, src.Headers)
	} else {
		asset, err = l.cap.OpenAsset(location)
	}
	if err != nil {
		errors.Report(&errors.Error{
			Op:   "media.assetLoader.open",
			Kind: errors.KindLoad,
			Err:  err,
		})
		return nil, err
	}
	return asset, nil
}

// checkLoadedAsset verifies the required property set after LoadProperties
// settles. A property the caller did not need may fail without aborting
// the load, but every required property must be loaded or unknown, and the
// asset must report playable.
func checkLoadedAsset(asset Asset) error {
	for _, p := range RequiredProperties {
		status, perr := asset.PropertyStatus(p)
		if status == PropertyStatusFailed {
			if perr != nil {
				return fmt.Errorf("failed to load %s property: %v", p, perr)
			}
			return fmt.Errorf("failed to load %s property", p)
		}
	}
	if !asset.Playable() {
		return fmt.Errorf("video is not playable")
	}
	return nil
}
