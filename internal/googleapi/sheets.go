package googleapi

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func NewSheets(ctx context.Context, ts oauth2.TokenSource, extra ...option.ClientOption) (*sheets.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, extra...)
	return sheets.NewService(ctx, opts...)
}
