// Package httputil provides the HTTP plumbing shared by descriptor feed
// clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff, but only for errors
// wrapped in [RetryableError]. [CheckStatus] classifies response codes the
// same way for every client: 5xx and 429 are retryable, 404 maps to
// [ErrNotFound], anything else non-2xx is a permanent failure.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp.StatusCode)
//	})
//
// # Clients
//
// [NewClient] returns an *http.Client with a bounded timeout. Feed servers
// are usually local development servers, so the timeout is short.
package httputil
