package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/red-crowdfund/pkg/app/http"
	apperrors "github.com/chainsafe/red-crowdfund/pkg/app/errors"
)

// Headers carrying a signed admin message.
const (
	HeaderSignature = "X-Signature"
	HeaderMessage   = "X-Message"
)

// MaxMessageAge bounds how old a signed admin message may be.
const MaxMessageAge = 5 * time.Minute

// Admin authenticates admin requests. A request is accepted with either a
// bearer token issued by the validator or an EIP-191 signature of
// AdminMessage made by one of the admin accounts.
type Admin struct {
	validator *JWTValidator
	admins    map[common.Address]bool
	now       func() time.Time
	logger    *zap.Logger
}

// NewAdmin creates the admin authenticator.
func NewAdmin(validator *JWTValidator, admins []common.Address, logger *zap.Logger) *Admin {
	set := make(map[common.Address]bool, len(admins))
	for _, a := range admins {
		set[a] = true
	}
	return &Admin{validator: validator, admins: set, now: time.Now, logger: logger}
}

// Middleware rejects unauthenticated requests with 401 and unknown signers with 403.
func (a *Admin) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if bearer, ok := bearerToken(r); ok {
			claims, err := a.validator.ValidateToken(bearer)
			if err != nil {
				a.logger.Debug("rejected admin token", zap.Error(err))
				apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid token"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(ctx, claims.Subject)))
			return
		}

		signature, message := r.Header.Get(HeaderSignature), r.Header.Get(HeaderMessage)
		if signature == "" || message == "" {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "authentication required"))
			return
		}
		signedAt, err := ParseAdminMessage(message)
		if err != nil {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid admin message"))
			return
		}
		if age := a.now().Sub(signedAt); age > MaxMessageAge || age < -MaxMessageAge {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(nil, "admin message expired"))
			return
		}
		signer, err := VerifyEIP191Signature(message, signature)
		if err != nil {
			apphttp.DefaultErrorHandler(w, apperrors.UnAuthorizedError(err, "invalid signature"))
			return
		}
		if !a.admins[signer] {
			apphttp.DefaultErrorHandler(w, apperrors.ForbiddenError(nil, "signer is not an admin"))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithEVMAddress(ctx, signer.Hex())))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
