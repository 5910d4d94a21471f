package hash

import "testing"

func TestBcryptRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := NewBcrypt(0)

	digest, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "correct horse battery" {
		t.Fatal("digest must not equal the plaintext")
	}

	if !hasher.Verify("correct horse battery", digest) {
		t.Error("Verify should accept the original password")
	}
	if hasher.Verify("wrong password", digest) {
		t.Error("Verify should reject a different password")
	}
}

func TestResetTokenDigest(t *testing.T) {
	t.Parallel()

	raw, digest, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(raw) != 64 {
		t.Errorf("raw token length = %d, want 64 hex chars", len(raw))
	}
	if raw == digest {
		t.Error("stored digest must differ from the raw token")
	}
	if DigestToken(raw) != digest {
		t.Error("DigestToken should reproduce the stored digest")
	}

	raw2, digest2, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if raw == raw2 || digest == digest2 {
		t.Error("consecutive tokens must differ")
	}
}

func TestTokensEqual(t *testing.T) {
	t.Parallel()

	if !TokensEqual("abc", "abc") {
		t.Error("identical digests should compare equal")
	}
	if TokensEqual("abc", "abd") {
		t.Error("different digests should not compare equal")
	}
	if TokensEqual("abc", "abcd") {
		t.Error("different lengths should not compare equal")
	}
}
