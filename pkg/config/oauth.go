package config

import (
	"context"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/blackcoderx/diffrun/pkg/model"
)

// ResolveOAuth2Headers fetches a bearer token for an AccessPoint's optional
// OAuth2 client-credentials block and returns the single header it should
// be merged into. Returns an empty map when the access point has no OAuth2
// block configured.
func ResolveOAuth2Headers(ctx context.Context, ap model.AccessPoint) (map[string]string, error) {
	if ap.OAuth2 == nil {
		return nil, nil
	}

	cc := clientcredentials.Config{
		ClientID:     ap.OAuth2.ClientID,
		ClientSecret: ap.OAuth2.ClientSecret,
		TokenURL:     ap.OAuth2.TokenURL,
		Scopes:       ap.OAuth2.Scopes,
	}

	token, err := cc.Token(ctx)
	if err != nil {
		return nil, err
	}

	headerName := ap.OAuth2.HeaderName
	if headerName == "" {
		headerName = "Authorization"
	}

	return map[string]string{
		headerName: token.Type() + " " + token.AccessToken,
	}, nil
}
