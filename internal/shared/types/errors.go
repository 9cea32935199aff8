package types

import "errors"

var (
	ErrNoEndpoints       = errors.New("at least one endpoint_id is required")
	ErrTooManyEndpoints  = errors.New("no more than 50 endpoint_ids can be queried at once")
	ErrInvertedDateRange = errors.New("end date must not be before start date")
	ErrNoAPIKey          = errors.New("no fal.ai admin API key configured. Set FAL_ADMIN_API_KEY or use --api-key")
	ErrNoNotionAPIKey    = errors.New("no Notion API key configured. Set NOTION_API_KEY or use --notion-api-key")
	ErrNoDatabaseID      = errors.New("no Notion database ID configured. Set NOTION_DATABASE_ID or use --notion-database-id")
	ErrNoModels          = errors.New("no model list given. Pass --models on the first run; the list is then kept in the state file")
	ErrNoKeywords        = errors.New("no invoice search keywords configured")
)
