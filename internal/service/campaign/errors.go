package campaign

import "errors"

// Sentinel errors for the campaign creation layer.
var (
	ErrNotFound         = errors.New("not found")
	ErrCampaignExists   = errors.New("campaign already exists")
	ErrObjectNotCreated = errors.New("object not created")
	ErrInvalidPurpose   = errors.New("invalid campaign purpose")
	ErrSyncTimeout      = errors.New("target sync did not complete in time")
)
