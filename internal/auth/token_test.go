package auth_test

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/expense-bot/internal"
	"github.com/frahmantamala/expense-bot/internal/auth"
)

var _ = Describe("JWTTokenGenerator", func() {
	var tokens *auth.JWTTokenGenerator

	BeforeEach(func() {
		tokens = auth.NewJWTTokenGenerator("test-secret", time.Hour)
	})

	It("should round-trip the employee and role", func() {
		signed, expiresAt, err := tokens.GenerateAccessToken(555, "controller")
		Expect(err).NotTo(HaveOccurred())
		Expect(expiresAt).To(BeTemporally("~", time.Now().Add(time.Hour), 5*time.Second))

		claims, err := tokens.ValidateToken(signed)
		Expect(err).NotTo(HaveOccurred())
		Expect(claims.EmployeeID).To(Equal(int64(555)))
		Expect(claims.Role).To(Equal("controller"))
		Expect(claims.Subject).To(Equal("555"))
	})

	It("should report expiry separately", func() {
		expired := auth.NewJWTTokenGenerator("test-secret", -time.Minute)
		signed, _, err := expired.GenerateAccessToken(555, "employee")
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.ValidateToken(signed)
		Expect(err).To(MatchError(internal.ErrTokenExpired))
	})

	It("should reject a foreign signature", func() {
		other := auth.NewJWTTokenGenerator("other-secret", time.Hour)
		signed, _, err := other.GenerateAccessToken(555, "employee")
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.ValidateToken(signed)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should reject the none algorithm", func() {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &auth.Claims{EmployeeID: 555})
		signed, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.ValidateToken(signed)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should reject tokens without an employee", func() {
		signed, _, err := tokens.GenerateAccessToken(0, "employee")
		Expect(err).NotTo(HaveOccurred())

		_, err = tokens.ValidateToken(signed)
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})

	It("should reject garbage", func() {
		_, err := tokens.ValidateToken("not.a.token")
		Expect(err).To(MatchError(internal.ErrInvalidToken))
	})
})
