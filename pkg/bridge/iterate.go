package bridge

import (
	"context"
	"errors"
)

// ErrStopIteration may be returned by an Iterate callback to end early without error
var ErrStopIteration = errors.New("bridge: stop iteration")

// Iterate walks every page of svc's collection, calling fn for each item in
// order. Pages are requested with starting_after set to the id of the last
// item seen until the server reports no more results.
func (c *Client) Iterate(ctx context.Context, svc *ResourceService, params ListParams, fn func(item any) error) error {
	if svc == nil {
		return ErrUnknownResource
	}
	for {
		page, err := listOf(svc.List(ctx, params))
		if err != nil {
			return err
		}
		for _, item := range page.Data() {
			if err := fn(item); err != nil {
				if errors.Is(err, ErrStopIteration) {
					return nil
				}
				return err
			}
		}

		if !page.HasMore() || page.Empty() {
			return nil
		}
		next := idOf(page.Last())
		if next == "" || next == params.StartingAfter {
			return nil
		}
		params.StartingAfter = next
		params.EndingBefore = ""
	}
}
