// Package mercadolivre implements the marketplace gateway over the Mercado
// Livre REST API.
//
// # Transport
//
// Every call goes through [Client], which adds the bearer token, paces
// requests with a token bucket and retries transient failures: up to
// MaxRetries times with exponential backoff (base 300ms) on HTTP 500, 502 and
// 504 and on connection errors. Nothing else is retried; business steps
// never retry.
//
// # Errors
//
// Failed calls return a *domain.RemoteError:
//
//   - Code is the body's error_code when present, else the HTTP status
//   - Code 1000 marks network errors
//   - Code 9999 marks anything unexpected (e.g. an undecodable body)
//   - Details holds the raw response body
//
// Use [IsNotFound], [IsUnauthorized], [IsRateLimited] and [IsRetryable] to
// inspect them.
//
// # Endpoints
//
//   - Items: GET/PUT/POST /items, GET/POST/PUT /items/{id}/description
//   - Categories: /sites/{site}/categories, /categories/{id},
//     /categories/{id}/attributes, /sites/{site}/domain_discovery/search
//   - Compatibilities: /catalog_compatibilities/products_search/chunks,
//     /items/{id}/compatibilities
//   - Pictures: /pictures/items/upload (multipart), /pictures (by URL)
package mercadolivre
