package auth

import (
	"crypto/ecdsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

func TestJWTValidator_IssueAndValidate(t *testing.T) {
	v := NewJWTValidator("secret", "redchain")
	token, err := v.IssueToken("ops", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	claims, err := v.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Subject != "ops" {
		t.Fatalf("expected subject ops, got %q", claims.Subject)
	}

	if _, err := NewJWTValidator("other", "redchain").ValidateToken(token); err == nil {
		t.Fatal("expected error for token signed with another secret")
	}
	if _, err := NewJWTValidator("secret", "someone-else").ValidateToken(token); err == nil {
		t.Fatal("expected error for wrong issuer")
	}

	expired, err := v.IssueToken("ops", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	if _, err := v.ValidateToken(expired); err == nil {
		t.Fatal("expected error for expired token")
	}

	if _, err := NewJWTValidator("", "").IssueToken("ops", time.Hour); err == nil {
		t.Fatal("expected error without a secret")
	}
}

func TestVerifyEIP191Signature(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	msg := AdminMessage(time.Unix(1515405600, 0))
	sig, err := crypto.Sign(eip191Hash(msg), key)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	sig[64] += 27

	addr, err := VerifyEIP191Signature(msg, hexutil.Encode(sig))
	if err != nil {
		t.Fatalf("VerifyEIP191Signature failed: %v", err)
	}
	if addr != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("recovered %s, expected %s", addr.Hex(), crypto.PubkeyToAddress(key.PublicKey).Hex())
	}

	if _, err := VerifyEIP191Signature(msg, "0x1234"); err == nil {
		t.Fatal("expected error for short signature")
	}

	signedAt, err := ParseAdminMessage(msg)
	if err != nil || signedAt.Unix() != 1515405600 {
		t.Fatalf("ParseAdminMessage returned %v, %v", signedAt, err)
	}
	if _, err := ParseAdminMessage("hello"); err == nil {
		t.Fatal("expected error for foreign message")
	}
}

func TestAdminMiddleware(t *testing.T) {
	key, _ := crypto.GenerateKey()
	admin := crypto.PubkeyToAddress(key.PublicKey)
	stranger, _ := crypto.GenerateKey()

	v := NewJWTValidator("secret", "")
	a := NewAdmin(v, []common.Address{admin}, zap.NewNop())
	now := time.Unix(1700000000, 0)
	a.now = func() time.Time { return now }

	var caller string
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	signed := func(signer *ecdsa.PrivateKey, msg string) *http.Request {
		sig, err := crypto.Sign(eip191Hash(msg), signer)
		if err != nil {
			t.Fatalf("Sign failed: %v", err)
		}
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(HeaderMessage, msg)
		req.Header.Set(HeaderSignature, hexutil.Encode(sig))
		return req
	}

	token, _ := v.IssueToken("ops", time.Hour)
	type testCase struct {
		name   string
		req    *http.Request
		status int
		caller string
	}
	tests := []testCase{
		{"no credentials", httptest.NewRequest(http.MethodPost, "/", nil), http.StatusUnauthorized, ""},
		{"admin signature", signed(key, AdminMessage(now)), http.StatusNoContent, admin.Hex()},
		{"stale signature", signed(key, AdminMessage(now.Add(-time.Hour))), http.StatusUnauthorized, ""},
		{"foreign signer", signed(stranger, AdminMessage(now)), http.StatusForbidden, ""},
	}

	bearer := httptest.NewRequest(http.MethodPost, "/", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)
	tests = append(tests, testCase{"bearer token", bearer, http.StatusNoContent, "ops"})

	badBearer := httptest.NewRequest(http.MethodPost, "/", nil)
	badBearer.Header.Set("Authorization", "Bearer nope")
	tests = append(tests, testCase{"bad bearer token", badBearer, http.StatusUnauthorized, ""})

	for _, tt := range tests {
		caller = ""
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, tt.req)
		if rec.Code != tt.status {
			t.Errorf("%s: expected status %d, got %d", tt.name, tt.status, rec.Code)
		}
		if caller != tt.caller {
			t.Errorf("%s: expected caller %q, got %q", tt.name, tt.caller, caller)
		}
	}
}
