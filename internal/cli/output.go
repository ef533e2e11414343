package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/rail-service/bridge_sdk/pkg/bridge"
)

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}

// printValue writes v as indented JSON, or as a spew dump when --dump is set
func (a *app) printValue(v any) error {
	if a.dump {
		dumper.Fdump(a.out, v)
		return nil
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(a.out, string(out))
	return err
}

// printResult prints a call's data and turns an API failure into the command's error
func (a *app) printResult(res *bridge.Result, err error) error {
	if err != nil {
		return err
	}
	if res.Error != nil {
		return describeAPIError(res.Error)
	}
	if res.Data == nil {
		_, err := fmt.Fprintf(a.out, "ok (status %d)\n", res.StatusCode)
		return err
	}
	return a.printValue(res.Data)
}

func describeAPIError(apiErr *bridge.APIError) error {
	switch {
	case apiErr.IsUnauthorized():
		return fmt.Errorf("%w (check BRIDGE_API_KEY)", apiErr)
	case apiErr.IsRateLimited() && apiErr.RetryAfter != nil:
		return fmt.Errorf("%w (retry after %ds)", apiErr, *apiErr.RetryAfter)
	}
	return apiErr
}

// parseData decodes a --data flag; an empty flag means no payload
func parseData(data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	raw := json.RawMessage(data)
	if !json.Valid(raw) {
		return nil, errors.New("--data must be valid JSON")
	}
	return raw, nil
}
