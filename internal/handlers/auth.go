package handlers

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"shopshere/internal/config"
	"shopshere/internal/mailer"
	"shopshere/internal/middleware"
	"shopshere/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginRequest struct {
	Credential string `json:"credential" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func Register(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "name, email and password are required")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := requestContext(c)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusBadRequest, route, "Email already registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		now := time.Now()
		user := models.User{
			Name:         strings.TrimSpace(req.Name),
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			Provider:     models.ProviderLocal,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		res, err := db.Collection("users").InsertOne(ctx, user)
		if err != nil {
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		user.ID = insertedObjectID(res)

		token, err := generateToken(user, cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		setAuthCookie(c, token, cfg)
		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

func Login(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "email and password are required")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusUnauthorized, route, "Invalid credentials")
			return
		}
		if err != nil {
			log.Println("[AUTH] [ERROR] login lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		// OAuth accounts carry no local hash and cannot log in with a password.
		if user.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			respondWithError(c, http.StatusUnauthorized, route, "Invalid credentials")
			return
		}

		token, err := generateToken(user, cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		setAuthCookie(c, token, cfg)
		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

func GoogleLogin(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/google"
		defer handlePanic(c, route)

		var req GoogleLoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Missing credential")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		payload, err := idtoken.Validate(ctx, req.Credential, cfg.GoogleClientID)
		if err != nil {
			log.Println("[AUTH] [ERROR] google token validation failed:", err)
			respondWithError(c, http.StatusUnauthorized, route, "Invalid Google token")
			return
		}

		email, _ := payload.Claims["email"].(string)
		name, _ := payload.Claims["name"].(string)
		picture, _ := payload.Claims["picture"].(string)
		if email == "" {
			respondWithError(c, http.StatusUnauthorized, route, "Invalid Google token")
			return
		}
		email = strings.ToLower(email)

		var user models.User
		err = db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
		if err == mongo.ErrNoDocuments {
			now := time.Now()
			user = models.User{
				Name:      name,
				Email:     email,
				Avatar:    picture,
				Role:      models.RoleUser,
				Provider:  models.ProviderGoogle,
				CreatedAt: now,
				UpdatedAt: now,
			}
			res, insertErr := db.Collection("users").InsertOne(ctx, user)
			if insertErr != nil {
				log.Println("[AUTH] [ERROR] google user insert failed:", insertErr)
				respondWithError(c, http.StatusInternalServerError, route, "Google login failed")
				return
			}
			user.ID = insertedObjectID(res)
		} else if err != nil {
			log.Println("[AUTH] [ERROR] google user lookup failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "Google login failed")
			return
		}

		token, err := generateToken(user, cfg.JWTSecret, cfg.TokenTTL)
		if err != nil {
			log.Println("[AUTH] [ERROR] google token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		setAuthCookie(c, token, cfg)
		log.Println("[AUTH] [INFO] google login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
	}
}

func Logout(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		clearAuthCookie(c, cfg)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

func GetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

func ForgotPassword(db *mongo.Database, cfg config.Config, mail *mailer.Mailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/forgot-password"
		defer handlePanic(c, route)

		var req ForgotPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "email is required")
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			respondWithError(c, http.StatusNotFound, route, "User not found")
			return
		}

		token, err := generateResetToken()
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token generation failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		expires := time.Now().Add(cfg.ResetTokenTTL)
		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{
				"resetPasswordToken":   hashResetToken(token),
				"resetPasswordExpires": expires,
				"updatedAt":            time.Now(),
			},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] reset token save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if err := mail.Send(user.Email, "Shopshere password reset", mailer.ResetPasswordHTML(cfg.ClientURL, token)); err != nil {
			log.Println("[AUTH] [ERROR] reset email failed:", err)
			// a token whose mail never went out is unusable, clear it
			_, _ = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
				"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
			})
			respondWithError(c, http.StatusInternalServerError, route, "Email could not be sent")
			return
		}

		log.Println("[AUTH] [INFO] reset email sent to:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
	}
}

func ResetPassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/reset-password"
		defer handlePanic(c, route)

		var req ResetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "password is required")
			return
		}

		hashed := hashResetToken(c.Param("token"))

		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		err := db.Collection("users").FindOne(ctx, bson.M{
			"resetPasswordToken":   hashed,
			"resetPasswordExpires": bson.M{"$gt": time.Now()},
		}).Decode(&user)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "Invalid or expired token")
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set":   bson.M{"passwordHash": string(passwordHash), "updatedAt": time.Now()},
			"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpires": ""},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] password reset save failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[AUTH] [INFO] password reset for:", user.Email)
		c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
	}
}

func UpdatePassword(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/auth/update-password"
		defer handlePanic(c, route)

		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
			return
		}

		var req UpdatePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "oldPassword and newPassword are required")
			return
		}

		if user.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)) != nil {
			respondWithError(c, http.StatusUnauthorized, route, "Invalid credentials")
			return
		}

		passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "password hash failed")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		_, err = db.Collection("users").UpdateByID(ctx, user.ID, bson.M{
			"$set": bson.M{"passwordHash": string(passwordHash), "updatedAt": time.Now()},
		})
		if err != nil {
			log.Println("[AUTH] [ERROR] password update failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
	}
}

func generateToken(user models.User, secret string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID.Hex(),
		"role": user.Role,
		"exp":  time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// authCookieAttributes picks cookie flags for the configured client origin.
// A localhost client runs over plain http, so Secure must stay off and Lax is
// enough; a deployed cross-site client needs Secure + SameSite=None.
func authCookieAttributes(clientIsLocalhost bool) (secure bool, sameSite http.SameSite) {
	if clientIsLocalhost {
		return false, http.SameSiteLaxMode
	}
	return true, http.SameSiteNoneMode
}

func setAuthCookie(c *gin.Context, token string, cfg config.Config) {
	secure, sameSite := authCookieAttributes(cfg.ClientIsLocalhost())
	c.SetSameSite(sameSite)
	c.SetCookie("token", token, int(cfg.TokenTTL.Seconds()), "/", "", secure, true)
}

func clearAuthCookie(c *gin.Context, cfg config.Config) {
	secure, sameSite := authCookieAttributes(cfg.ClientIsLocalhost())
	c.SetSameSite(sameSite)
	c.SetCookie("token", "", -1, "/", "", secure, true)
}

func generateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
