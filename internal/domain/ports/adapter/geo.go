package adapter

import "context"

// GeoResolver looks up the country and city for a client IP.
// Resolution is best-effort: any failure yields empty strings.
type GeoResolver interface {
	Resolve(ctx context.Context, ip string) (country, city string)
}
