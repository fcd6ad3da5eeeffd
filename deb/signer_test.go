package deb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func generateTestKey(t *testing.T) string {
	t.Helper()
	entity, err := openpgp.NewEntity("Test Repo", "test", "test@example.com", nil)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		t.Fatalf("serialize private: %v", err)
	}
	w.Close()
	return buf.String()
}

func TestSignReleaseProducesAllThreeArtifacts(t *testing.T) {
	key := generateTestKey(t)
	release := []byte("Origin: o\nLabel: l\n")

	signed, err := SignRelease(release, key)
	if err != nil {
		t.Fatalf("SignRelease: %v", err)
	}

	if !strings.Contains(string(signed.InRelease), "-----BEGIN PGP SIGNED MESSAGE-----") {
		t.Error("InRelease does not look like a cleartext-signed message")
	}
	if !strings.Contains(string(signed.ReleaseGPG), "-----BEGIN PGP SIGNATURE-----") {
		t.Error("Release.gpg does not look like an armored detached signature")
	}
	if len(signed.Keyring) == 0 {
		t.Error("keyring is empty")
	}
}

func TestSignReleaseRejectsKeyWithoutPrivateHalf(t *testing.T) {
	key := generateTestKey(t)
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(key))
	if err != nil {
		t.Fatalf("read keyring: %v", err)
	}

	var pubOnly bytes.Buffer
	w, err := armor.Encode(&pubOnly, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entities[0].Serialize(w); err != nil {
		t.Fatalf("serialize public: %v", err)
	}
	w.Close()

	_, err = SignRelease([]byte("x"), pubOnly.String())
	se, ok := err.(*SigningError)
	if !ok || se.Kind != ErrNoPrivateKey {
		t.Fatalf("expected ErrNoPrivateKey, got %v", err)
	}
}
