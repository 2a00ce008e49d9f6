// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/coolercontrol/coolerd/pkg/file"
)

// DefaultPassword is the password bootstrapped into a fresh
// credentials file on first run. Operators are expected to change it
// via passwd immediately after the initial login.
const DefaultPassword = "coolAdmin"

const saltSize = 16
const sessionKeySize = 32

// credentialsDoc is the on-disk TOML shape of the credentials file.
type credentialsDoc struct {
	SaltHex       string `toml:"salt"`
	PasswordHash  string `toml:"password_hash"`
	SessionKeyHex string `toml:"session_key"`
}

// Credentials holds the password hash and session-signing key from
// the separate, mode-0600 credentials file (spec §4.8).
type Credentials struct {
	path       string
	salt       []byte
	hash       []byte
	sessionKey []byte
}

// LoadOrCreateCredentials loads path, or bootstraps a fresh
// credentials file with DefaultPassword and a random session-signing
// key if it does not yet exist.
func LoadOrCreateCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		c, genErr := newCredentials(path, DefaultPassword)
		if genErr != nil {
			return nil, genErr
		}
		if err := c.persist(); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	var doc credentialsDoc
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	salt, err := hex.DecodeString(doc.SaltHex)
	if err != nil {
		return nil, err
	}
	hash, err := hex.DecodeString(doc.PasswordHash)
	if err != nil {
		return nil, err
	}
	sessionKey, err := hex.DecodeString(doc.SessionKeyHex)
	if err != nil {
		return nil, err
	}
	return &Credentials{path: path, salt: salt, hash: hash, sessionKey: sessionKey}, nil
}

func newCredentials(path, password string) (*Credentials, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	sessionKey := make([]byte, sessionKeySize)
	if _, err := rand.Read(sessionKey); err != nil {
		return nil, err
	}
	return &Credentials{
		path:       path,
		salt:       salt,
		hash:       hashPassword(salt, password),
		sessionKey: sessionKey,
	}, nil
}

func hashPassword(salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(nil)
}

// VerifyPassword reports whether password matches the stored hash,
// using a constant-time comparison to avoid timing side-channels.
func (c *Credentials) VerifyPassword(password string) bool {
	candidate := hashPassword(c.salt, password)
	return subtle.ConstantTimeCompare(candidate, c.hash) == 1
}

// SessionKey returns the random key used to sign session cookies.
func (c *Credentials) SessionKey() []byte {
	return bytes.Clone(c.sessionKey)
}

// IssueSession mints a session cookie value good for ttl: a random
// session id and expiry timestamp, signed with the credentials file's
// HMAC-SHA256 session-signing key (spec §4.8/§6). The transport never
// sees the signing key; it only ever relays this opaque token between
// the client cookie and config.session_valid.
func (c *Credentials) IssueSession(ttl time.Duration) (token string, expiresAt time.Time, err error) {
	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", time.Time{}, err
	}
	id := base64.RawURLEncoding.EncodeToString(idBytes)
	expiresAt = time.Now().Add(ttl)
	return c.signSession(id, expiresAt.Unix()), expiresAt, nil
}

// VerifySession reports whether token is well-formed, signed with this
// credentials file's session key, and not yet expired.
func (c *Credentials) VerifySession(token string) bool {
	parts := strings.SplitN(token, ".", 3)
	if len(parts) != 3 {
		return false
	}
	id, expiryStr, sig := parts[0], parts[1], parts[2]
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return false
	}
	want := c.sign(id, expiryStr)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) != 1 {
		return false
	}
	return time.Now().Before(time.Unix(expiry, 0))
}

func (c *Credentials) signSession(id string, expiry int64) string {
	expiryStr := strconv.FormatInt(expiry, 10)
	return fmt.Sprintf("%s.%s.%s", id, expiryStr, c.sign(id, expiryStr))
}

func (c *Credentials) sign(id, expiryStr string) string {
	mac := hmac.New(sha256.New, c.sessionKey)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(expiryStr))
	return hex.EncodeToString(mac.Sum(nil))
}

// SetPassword replaces the stored password with a fresh salt and hash
// and persists the file.
func (c *Credentials) SetPassword(password string) error {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return err
	}
	c.salt = salt
	c.hash = hashPassword(salt, password)
	return c.persist()
}

func (c *Credentials) persist() error {
	doc := credentialsDoc{
		SaltHex:       hex.EncodeToString(c.salt),
		PasswordHash:  hex.EncodeToString(c.hash),
		SessionKeyHex: hex.EncodeToString(c.sessionKey),
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}
	return file.AtomicReplaceFile(c.path, buf.Bytes(), 0o600)
}
