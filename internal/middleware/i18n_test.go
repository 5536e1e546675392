package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type assertError string

func (e assertError) Error() string { return string(e) }

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback string
		country  string
		want     string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "ja")
			},
			country: "US",
			want:    "ja",
		},
		{
			name: "x-locale region variant",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "zh-CN")
			},
			want: "zh",
		},
		{
			name: "x-locale unparseable",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "!!")
			},
			want: "en",
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.5")
			},
			want: "ja",
		},
		{
			name: "accept-language unsupported falls back",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
			},
			want: "en",
		},
		{
			name:    "country jp maps to ja",
			country: "JP",
			want:    "ja",
		},
		{
			name:    "country cn maps to zh",
			country: "CN",
			want:    "zh",
		},
		{
			name:    "country non-mapped falls back to en",
			country: "US",
			want:    "en",
		},
		{
			name:     "configured fallback",
			fallback: "ja",
			want:     "ja",
		},
		{
			name: "default to en",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := detectLocale(req, tc.fallback, tc.country)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		resolver CountryLookup
		want     string
	}{
		{
			name: "header precedence",
			setup: func(r *http.Request) {
				r.Header.Set("X-Country-Code", "jp")
				r.Header.Set("CF-IPCountry", "cn")
			},
			want: "JP",
		},
		{
			name: "cloudflare header",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCountry", "cn")
			},
			want: "CN",
		},
		{
			name: "resolver fallback",
			resolver: func(ip string) (string, error) {
				if ip != "203.0.113.4" {
					t.Fatalf("unexpected ip: %s", ip)
				}
				return "jp", nil
			},
			want: "JP",
		},
		{
			name: "resolver error returns empty",
			resolver: func(ip string) (string, error) {
				return "", assertError("boom")
			},
			want: "",
		},
		{
			name: "no hints",
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "203.0.113.4:80"
			if tc.setup != nil {
				tc.setup(req)
			}
			got := resolveCountry(req, tc.resolver)
			if got != tc.want {
				t.Fatalf("resolveCountry() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NMiddleware(t *testing.T) {
	var gotLocale, gotCountry string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Country-Code", "jp")
	rec := httptest.NewRecorder()
	I18N("en", nil)(next).ServeHTTP(rec, req)

	if gotLocale != "ja" {
		t.Fatalf("locale = %q, want %q", gotLocale, "ja")
	}
	if gotCountry != "JP" {
		t.Fatalf("country = %q, want %q", gotCountry, "JP")
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "ja")
	if got := LocaleFromContext(ctx); got != "ja" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "ja")
	}
}
