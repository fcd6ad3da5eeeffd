package deb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/clearsign"
)

// SigningErrorKind distinguishes the ways a signing pass over release text
// can fail.
type SigningErrorKind int

const (
	ErrNoPrivateKey SigningErrorKind = iota
	ErrNoSignatures
	ErrSignFailed
)

// SigningError reports a failure producing InRelease, Release.gpg, or the
// public keyring from a release text and secret key.
type SigningError struct {
	Kind SigningErrorKind
	Err  error
}

func (e *SigningError) Error() string {
	switch e.Kind {
	case ErrNoPrivateKey:
		return "signer: armored key has no usable private key"
	case ErrNoSignatures:
		return "signer: signing produced no signatures"
	default:
		return fmt.Sprintf("signer: %v", e.Err)
	}
}

func (e *SigningError) Unwrap() error { return e.Err }

// SignedRelease is everything SignRelease produces from one release text.
type SignedRelease struct {
	InRelease  []byte
	ReleaseGPG []byte
	Keyring    []byte
}

// SignRelease clearsigns release (producing InRelease), detached-signs it
// (producing Release.gpg), and serializes the public half of key (producing
// the repository keyring). key is an ASCII-armored secret key with an empty
// passphrase.
func SignRelease(release []byte, armoredKey string) (*SignedRelease, error) {
	signer, err := loadSigner(armoredKey)
	if err != nil {
		return nil, err
	}

	inRelease, err := clearsignRelease(release, signer)
	if err != nil {
		return nil, err
	}

	detached, err := detachSignRelease(release, signer)
	if err != nil {
		return nil, err
	}

	keyring, err := serializePublicKey(signer)
	if err != nil {
		return nil, err
	}

	return &SignedRelease{InRelease: inRelease, ReleaseGPG: detached, Keyring: keyring}, nil
}

func loadSigner(armoredKey string) (*openpgp.Entity, error) {
	entities, err := openpgp.ReadArmoredKeyRing(strings.NewReader(armoredKey))
	if err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	for _, e := range entities {
		if e.PrivateKey != nil {
			return e, nil
		}
	}
	return nil, &SigningError{Kind: ErrNoPrivateKey}
}

func clearsignRelease(release []byte, signer *openpgp.Entity) ([]byte, error) {
	var out bytes.Buffer
	w, err := clearsign.Encode(&out, signer.PrivateKey, nil)
	if err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	if _, err := w.Write(release); err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	return out.Bytes(), nil
}

func detachSignRelease(release []byte, signer *openpgp.Entity) ([]byte, error) {
	var sig bytes.Buffer
	if err := openpgp.DetachSign(&sig, signer, bytes.NewReader(release), nil); err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	if sig.Len() == 0 {
		return nil, &SigningError{Kind: ErrNoSignatures}
	}

	var out bytes.Buffer
	w, err := armor.Encode(&out, openpgp.SignatureType, nil)
	if err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	if _, err := w.Write(sig.Bytes()); err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	if err := w.Close(); err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	return out.Bytes(), nil
}

func serializePublicKey(signer *openpgp.Entity) ([]byte, error) {
	var buf bytes.Buffer
	if err := signer.Serialize(&buf); err != nil {
		return nil, &SigningError{Kind: ErrSignFailed, Err: err}
	}
	return buf.Bytes(), nil
}
