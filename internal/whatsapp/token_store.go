package whatsapp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TokenStore resolves the API credential for a business messaging channel.
// A missing token is a delivery-only failure; it never affects cart state.
type TokenStore interface {
	Token(ctx context.Context, businessPhoneID string) (string, error)
}

// ErrNoToken means no credential is registered for the channel.
var ErrNoToken = errors.New("no whatsapp token for channel")

// PostgresTokenStore reads decrypted tokens from the secure-storage schema
// through its SQL function, so raw credentials never leave the database
// unencrypted at rest.
type PostgresTokenStore struct {
	db            *sql.DB
	encryptionKey string
}

func NewPostgresTokenStore(db *sql.DB, encryptionKey string) *PostgresTokenStore {
	return &PostgresTokenStore{db: db, encryptionKey: encryptionKey}
}

func (s *PostgresTokenStore) Token(ctx context.Context, businessPhoneID string) (string, error) {
	var token sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT secure_storage.get_decrypted_whatsapp_token(bw.business_id, $2::TEXT)
		FROM secure_storage.business_whatsapp_credentials AS bw
		WHERE bw.whatsapp_phone_number_id = $1`,
		businessPhoneID, s.encryptionKey,
	).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to fetch whatsapp token: %w", err)
	}
	if !token.Valid || token.String == "" {
		return "", ErrNoToken
	}
	return token.String, nil
}

var _ TokenStore = (*PostgresTokenStore)(nil)
