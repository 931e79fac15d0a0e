package googleapi

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func NewDrive(ctx context.Context, ts oauth2.TokenSource, extra ...option.ClientOption) (*drive.Service, error) {
	opts := append([]option.ClientOption{option.WithTokenSource(ts)}, extra...)
	return drive.NewService(ctx, opts...)
}
