package i18n

import "net/http"

// Middleware injects a localizer into every request context. The lang
// query parameter wins over the Accept-Language header, and the bundle
// default is used when neither matches.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := NewLocalizer(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
		ctx := WithLocalizer(r.Context(), loc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
