package sign

import (
	"fmt"

	"github.com/franks42/canonical-edn/value"
)

var (
	keyAlg       = value.Kw("alg")
	keyHash      = value.Kw("hash")
	keyProfile   = value.Kw("profile")
	keyPublicKey = value.Kw("public-key")
	keySig       = value.Kw("sig")
)

// Value renders the signature as an EDN map with #bytes payloads, so it can
// itself be canonicalized under the rich profile.
func (s Signature) Value() value.Map {
	return value.NewMap(
		value.E(keyAlg, value.String(s.Alg)),
		value.E(keyHash, value.String(s.HashAlg)),
		value.E(keyProfile, value.String(s.Profile)),
		value.E(keyPublicKey, value.Bytes(s.PublicKey)),
		value.E(keySig, value.Bytes(s.Sig)),
	)
}

// FromValue reads a signature map produced by Value.
func FromValue(v value.Value) (Signature, error) {
	m, ok := v.(value.Map)
	if !ok {
		return Signature{}, fmt.Errorf("signature must be a map, got %s", value.TypeName(v))
	}

	var s Signature
	for _, e := range m {
		k, ok := e.Key.(value.Keyword)
		if !ok || k.Namespace != "" {
			return Signature{}, fmt.Errorf("unexpected signature key %v", e.Key)
		}
		var err error
		switch k.Name {
		case keyAlg.Name:
			s.Alg, err = stringField(k, e.Val)
		case keyHash.Name:
			s.HashAlg, err = stringField(k, e.Val)
		case keyProfile.Name:
			s.Profile, err = stringField(k, e.Val)
		case keyPublicKey.Name:
			s.PublicKey, err = bytesField(k, e.Val)
		case keySig.Name:
			s.Sig, err = bytesField(k, e.Val)
		default:
			err = fmt.Errorf("unknown signature field :%s", k.Name)
		}
		if err != nil {
			return Signature{}, err
		}
	}
	if s.Alg == "" || s.HashAlg == "" || s.Profile == "" || s.Sig == nil {
		return Signature{}, fmt.Errorf("signature is missing required fields")
	}
	return s, nil
}

func stringField(k value.Keyword, v value.Value) (string, error) {
	s, ok := v.(value.String)
	if !ok {
		return "", fmt.Errorf(":%s must be a string, got %s", k.Name, value.TypeName(v))
	}
	return string(s), nil
}

func bytesField(k value.Keyword, v value.Value) ([]byte, error) {
	b, ok := v.(value.Bytes)
	if !ok {
		return nil, fmt.Errorf(":%s must be #bytes, got %s", k.Name, value.TypeName(v))
	}
	return []byte(b), nil
}
