package persistence

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"gorm.io/gorm/schema"
)

// Cifrador is the encryption boundary for sensitive text columns. The domain
// layer only ever sees plaintext; ciphertext exists between here and the
// database.
type Cifrador interface {
	Encode(plaintext string) (string, error)
	Decode(ciphertext string) (string, error)
}

var cifradorActivo Cifrador = noopCifrador{}

// SetCifrador installs the encryption implementation and registers the gorm
// serializer. Call once during initialization, before opening the DB.
func SetCifrador(c Cifrador) {
	if c != nil {
		cifradorActivo = c
	}
	schema.RegisterSerializer("cifrado", cifradoSerializer{})
}

// noopCifrador passes text through unchanged; used when no data key is
// configured.
type noopCifrador struct{}

func (noopCifrador) Encode(s string) (string, error) { return s, nil }
func (noopCifrador) Decode(s string) (string, error) { return s, nil }

const prefijoCifrado = "enc:"

// aesCifrador encrypts with AES-256-GCM, key derived from the configured
// data key. Output is prefixed so legacy plaintext rows still decode.
type aesCifrador struct {
	gcm cipher.AEAD
}

func NewAesCifrador(dataKey string) (Cifrador, error) {
	if dataKey == "" {
		return nil, errors.New("data key vacía")
	}
	sum := sha256.Sum256([]byte(dataKey))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &aesCifrador{gcm: gcm}, nil
}

func (c *aesCifrador) Encode(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefijoCifrado + base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *aesCifrador) Decode(ciphertext string) (string, error) {
	if !strings.HasPrefix(ciphertext, prefijoCifrado) {
		return ciphertext, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(ciphertext, prefijoCifrado))
	if err != nil {
		return "", err
	}
	ns := c.gcm.NonceSize()
	if len(raw) < ns {
		return "", errors.New("ciphertext truncado")
	}
	plain, err := c.gcm.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// cifradoSerializer plugs the Cifrador into gorm for fields tagged
// serializer:cifrado.
type cifradoSerializer struct{}

func (cifradoSerializer) Scan(ctx context.Context, field *schema.Field, dst reflect.Value, dbValue interface{}) error {
	var texto string
	switch v := dbValue.(type) {
	case nil:
	case string:
		texto = v
	case []byte:
		texto = string(v)
	default:
		return fmt.Errorf("tipo no soportado para campo cifrado: %T", dbValue)
	}
	plano, err := cifradorActivo.Decode(texto)
	if err != nil {
		return err
	}
	field.ReflectValueOf(ctx, dst).SetString(plano)
	return nil
}

func (cifradoSerializer) Value(ctx context.Context, field *schema.Field, dst reflect.Value, fieldValue interface{}) (interface{}, error) {
	texto, _ := fieldValue.(string)
	return cifradorActivo.Encode(texto)
}
