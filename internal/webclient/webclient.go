package webclient

import "context"

// WebClient performs outbound HTTP requests for the fetcher. Backends differ in
// how they obtain the body (plain net/http or a headless browser).
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
