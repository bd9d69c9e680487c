package auth

import (
	"time"

	"acenta-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PrincipalUser = "user"
	PrincipalCari = "cari"
)

type JWTCustomClaims struct {
	Principal     string `json:"principal"` // user | cari
	UserID        uint   `json:"user_id,omitempty"`
	CompanyID     uint   `json:"company_id"`
	IsAdmin       bool   `json:"is_admin,omitempty"`
	CariID        uint   `json:"cari_id,omitempty"`
	CariAccountID uint   `json:"cari_account_id,omitempty"`
	CariCode      string `json:"cari_code,omitempty"`
	jwt.RegisteredClaims
}

func GenerateUserToken(secret string, user *models.User) (string, error) {
	claims := &JWTCustomClaims{
		Principal: PrincipalUser,
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		IsAdmin:   user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)), // 7 gün
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateCariToken cari panel girişi için cari_code kapsamlı token üretir.
func GenerateCariToken(secret string, cari *models.Cari) (string, error) {
	claims := &JWTCustomClaims{
		Principal:     PrincipalCari,
		CompanyID:     cari.CompanyID,
		CariID:        cari.ID,
		CariAccountID: cari.CariAccountID,
		CariCode:      cari.CariCode,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)), // 1 gün
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
