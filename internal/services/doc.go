// Package services implements the content gateways: typed clients for the
// video and document providers that translate queries into HTTP calls and
// normalize each provider's response shape into [models.Item] values.
//
// Every gateway satisfies [Source]. Transport failures, quota rejections, and
// malformed items are handled per source: quota rejections surface as
// [shared.ErrQuotaExceeded] so the feed coordinator can fall back, and
// individual malformed items are dropped rather than failing the page.
package services
