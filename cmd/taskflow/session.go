package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gosuda/taskflow/internal/config"
	"github.com/gosuda/taskflow/internal/remote"
)

var errNotSignedIn = errors.New("not signed in, run `taskflow login` first")

// session is a signed-in client with its stored credentials.
type session struct {
	cfg    *config.ClientConfig
	creds  *credentials
	client *remote.Client
	log    zerolog.Logger
	closer io.Closer
}

func (s *session) Close() error {
	return s.closer.Close()
}

// newClient builds an unauthenticated client for cfg.
func newClient(cfg *config.ClientConfig, logger zerolog.Logger) (*remote.Client, error) {
	tc := remote.DefaultTransportConfig()
	tc.Timeout = cfg.HTTPTimeout
	return remote.New(cfg.APIURL,
		remote.WithHTTPClient(remote.NewHTTPClient(tc)),
		remote.WithLogger(logger),
	)
}

// openClient loads the client configuration and logging without requiring
// stored credentials.
func openClient() (*config.ClientConfig, *remote.Client, zerolog.Logger, io.Closer, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, err
	}
	logger, closer, err := setupClientLogging(cfg.Log)
	if err != nil {
		return nil, nil, zerolog.Nop(), nil, err
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		_ = closer.Close()
		return nil, nil, zerolog.Nop(), nil, err
	}
	return cfg, client, logger, closer, nil
}

// openSession resumes the stored session. An expired access token is renewed
// once with the refresh token; credentials saved for another service URL
// count as signed out.
func openSession(ctx context.Context) (*session, error) {
	cfg, client, logger, closer, err := openClient()
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, client: client, log: logger, closer: closer}

	creds, err := loadCredentials(cfg.Credentials)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if creds == nil || creds.APIURL != cfg.APIURL || creds.AccessToken == "" {
		_ = s.Close()
		return nil, errNotSignedIn
	}
	s.creds = creds
	client.SetToken(creds.AccessToken)

	if err := s.verify(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) verify(ctx context.Context) error {
	me, err := s.client.Me(ctx)
	if remote.IsStatus(err, http.StatusUnauthorized) {
		if err := s.refresh(ctx); err != nil {
			return err
		}
		me, err = s.client.Me(ctx)
	}
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}

	if me.ID != s.creds.UserID || me.Name != s.creds.Name || me.Email != s.creds.Email {
		s.creds.UserID, s.creds.Name, s.creds.Email = me.ID, me.Name, me.Email
		if err := saveCredentials(s.cfg.Credentials, s.creds); err != nil {
			s.log.Warn().Err(err).Msg("cli: could not update credentials")
		}
	}
	return nil
}

func (s *session) refresh(ctx context.Context) error {
	if s.creds.RefreshToken == "" {
		return errNotSignedIn
	}
	access, err := s.client.Refresh(ctx, s.creds.RefreshToken)
	if remote.IsStatus(err, http.StatusUnauthorized) {
		return errNotSignedIn
	}
	if err != nil {
		return fmt.Errorf("refresh session: %w", err)
	}

	s.creds.AccessToken = access
	s.client.SetToken(access)
	if err := saveCredentials(s.cfg.Credentials, s.creds); err != nil {
		return err
	}
	s.log.Debug().Msg("cli: access token refreshed")
	return nil
}
