package core

import "context"

// Replier delivers replies to the messaging backend.
type Replier interface {
	SendReply(ctx context.Context, r Reply) error
}

// UpdateSource fetches updates starting at offset. Zero means no cursor.
type UpdateSource interface {
	FetchUpdates(ctx context.Context, offset int64) ([]Update, error)
}

// WeatherService renders weather lookups as reply text. Implementations
// never fail: lookup problems are rendered as user-facing strings.
type WeatherService interface {
	Current(ctx context.Context, city string) string
	Forecast(ctx context.Context, city string) string
}
