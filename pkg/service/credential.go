package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"io"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/cointrail/cointrail/pkg/types"
)

const credentialNonceSize = 24

// CredentialService stores exchange API credentials encrypted at rest with
// a 32-byte secretbox key. Keys never appear in logs or query output.
type CredentialService struct {
	DB      *sqlx.DB
	dialect DatabaseDialect
	key     [32]byte
}

type credentialRecord struct {
	UserID    string    `db:"user_id"`
	Exchange  string    `db:"exchange"`
	AccessKey string    `db:"access_key"`
	SecretKey string    `db:"secret_key"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewCredentialService expects encryptionKey as 64 hex characters.
func NewCredentialService(db *sqlx.DB, encryptionKey string) (*CredentialService, error) {
	raw, err := hex.DecodeString(encryptionKey)
	if err != nil {
		return nil, errors.Wrap(err, "credential encryption key must be hex encoded")
	}
	if len(raw) != 32 {
		return nil, errors.Errorf("credential encryption key must be 32 bytes, got %d", len(raw))
	}

	s := &CredentialService{
		DB:      db,
		dialect: GetDialect(db.DriverName()),
	}
	copy(s.key[:], raw)
	return s, nil
}

func (s *CredentialService) seal(plaintext string) (string, error) {
	var nonce [credentialNonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}

	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (s *CredentialService) open(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "malformed credential ciphertext")
	}
	if len(sealed) < credentialNonceSize {
		return "", errors.New("credential ciphertext too short")
	}

	var nonce [credentialNonceSize]byte
	copy(nonce[:], sealed[:credentialNonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[credentialNonceSize:], &nonce, &s.key)
	if !ok {
		return "", errors.New("credential decryption failed, wrong encryption key?")
	}
	return string(plaintext), nil
}

// Save encrypts and upserts the credential for (user, exchange).
func (s *CredentialService) Save(ctx context.Context, credential types.Credential) error {
	accessKey, err := s.seal(credential.AccessKey)
	if err != nil {
		return err
	}
	secretKey, err := s.seal(credential.SecretKey)
	if err != nil {
		return err
	}

	query := s.dialect.UpsertSQL("exchange_credentials",
		"user_id, exchange, access_key, secret_key, updated_at",
		":user_id, :exchange, :access_key, :secret_key, :updated_at",
		"user_id, exchange",
		"access_key = :access_key, secret_key = :secret_key, updated_at = :updated_at")

	record := credentialRecord{
		UserID:    credential.UserID,
		Exchange:  string(credential.Exchange),
		AccessKey: accessKey,
		SecretKey: secretKey,
		UpdatedAt: time.Now(),
	}

	_, err = s.DB.NamedExecContext(ctx, query, record)
	return errors.Wrapf(err, "save credential for user %s on %s", credential.UserID, credential.Exchange)
}

// Get returns the decrypted credential, or ErrCredentialsMissing when the
// user has not registered one for the exchange.
func (s *CredentialService) Get(ctx context.Context, userID string, exchange types.ExchangeName) (types.Credential, error) {
	var record credentialRecord
	err := s.DB.GetContext(ctx, &record,
		"SELECT user_id, exchange, access_key, secret_key, updated_at FROM exchange_credentials WHERE user_id = ? AND exchange = ?",
		userID, exchange)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Credential{}, errors.Wrapf(types.ErrCredentialsMissing, "user %s has no %s credential", userID, exchange)
		}
		return types.Credential{}, err
	}

	accessKey, err := s.open(record.AccessKey)
	if err != nil {
		return types.Credential{}, err
	}
	secretKey, err := s.open(record.SecretKey)
	if err != nil {
		return types.Credential{}, err
	}

	return types.Credential{
		UserID:    record.UserID,
		Exchange:  types.ExchangeName(record.Exchange),
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

func (s *CredentialService) Delete(ctx context.Context, userID string, exchange types.ExchangeName) error {
	result, err := s.DB.ExecContext(ctx,
		"DELETE FROM exchange_credentials WHERE user_id = ? AND exchange = ?", userID, exchange)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.Wrapf(types.ErrCredentialsMissing, "user %s has no %s credential", userID, exchange)
	}
	return nil
}

// CredentialSummary describes one stored credential without exposing key
// material.
type CredentialSummary struct {
	Exchange        types.ExchangeName `json:"exchange"`
	MaskedAccessKey string             `json:"accessKey"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// List returns masked summaries of every credential the user registered.
func (s *CredentialService) List(ctx context.Context, userID string) ([]CredentialSummary, error) {
	var records []credentialRecord
	err := s.DB.SelectContext(ctx, &records,
		"SELECT user_id, exchange, access_key, secret_key, updated_at FROM exchange_credentials WHERE user_id = ? ORDER BY exchange ASC",
		userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]CredentialSummary, 0, len(records))
	for _, record := range records {
		accessKey, err := s.open(record.AccessKey)
		if err != nil {
			return nil, err
		}

		masked := types.Credential{AccessKey: accessKey}
		summaries = append(summaries, CredentialSummary{
			Exchange:        types.ExchangeName(record.Exchange),
			MaskedAccessKey: masked.MaskedAccessKey(),
			UpdatedAt:       record.UpdatedAt,
		})
	}

	return summaries, nil
}

// Users lists every user id holding a credential for the exchange, used by
// the scheduled sync to walk all registered accounts.
func (s *CredentialService) Users(ctx context.Context, exchange types.ExchangeName) ([]string, error) {
	var userIDs []string
	err := s.DB.SelectContext(ctx, &userIDs,
		"SELECT user_id FROM exchange_credentials WHERE exchange = ? ORDER BY user_id ASC", exchange)
	return userIDs, err
}
