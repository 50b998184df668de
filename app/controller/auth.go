package controller

import (
	"errors"
	"net/http"

	httpdto "github.com/vibast-solutions/ms-go-blog/app/dto/http"
	"github.com/vibast-solutions/ms-go-blog/app/middleware"
	"github.com/vibast-solutions/ms-go-blog/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{authService: authService, userService: userService}
}

func (c *AuthController) SignUp(ctx echo.Context) error {
	var req httpdto.SignUpRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind sign-up request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := httpdto.Validate(&req); err != nil {
		logrus.WithField("email", req.User.Email).Debug("Sign-up validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.User.Email).Info("Sign-up request received")
	user, err := c.authService.SignUp(ctx.Request().Context(), service.CreateUserInput{
		Email:    req.User.Email,
		Username: req.User.Username,
		Name:     req.User.Name,
		Password: req.User.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrCredentialTaken) {
			logrus.WithField("email", req.User.Email).Warn("Sign-up failed: credential taken")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email or username already taken"})
		}
		logrus.WithError(err).WithField("email", req.User.Email).Error("Sign-up failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User signed up")

	return ctx.JSON(http.StatusCreated, httpdto.NewUserEnvelope(user))
}

func (c *AuthController) SignIn(ctx echo.Context) error {
	var req httpdto.SignInRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind sign-in request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := httpdto.Validate(&req); err != nil {
		logrus.WithField("email", req.User.Email).Debug("Sign-in validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.User.Email).Info("Sign-in request received")
	user, err := c.authService.SignIn(ctx.Request().Context(), req.User.Email, req.User.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.User.Email).Warn("Sign-in failed: invalid credentials")
			return ctx.JSON(http.StatusUnprocessableEntity, httpdto.ErrorResponse{Error: "credentials are not valid"})
		}
		logrus.WithError(err).WithField("email", req.User.Email).Error("Sign-in failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	accessCookie, err := c.authService.AccessTokenCookie(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue access token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	refreshToken, refreshCookie, err := c.authService.RefreshTokenCookie(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue refresh token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	if err := c.userService.SetRefreshToken(ctx.Request().Context(), user.ID, refreshToken); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to persist refresh token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	ctx.SetCookie(accessCookie)
	ctx.SetCookie(refreshCookie)

	logrus.WithField("user_id", user.ID).Info("Sign-in successful")
	return ctx.JSON(http.StatusOK, httpdto.NewUserEnvelope(user))
}

func (c *AuthController) Logout(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", user.ID).Info("Logout request received")
	if err := c.userService.RemoveRefreshToken(ctx.Request().Context(), user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	for _, cookie := range c.authService.LogoutCookies() {
		ctx.SetCookie(cookie)
	}

	logrus.WithField("user_id", user.ID).Info("Logout successful")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "logged out successfully"})
}

func (c *AuthController) Authenticate(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewUserEnvelope(user))
}

// Refresh issues a new access cookie. The refresh token itself is not
// rotated.
func (c *AuthController) Refresh(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	accessCookie, err := c.authService.AccessTokenCookie(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to refresh access token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	ctx.SetCookie(accessCookie)

	logrus.WithField("user_id", user.ID).Debug("Access token refreshed")
	return ctx.JSON(http.StatusOK, httpdto.NewUserEnvelope(user))
}

func (c *AuthController) ChangePassword(ctx echo.Context) error {
	var req httpdto.ChangePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind change password request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := httpdto.Validate(&req); err != nil {
		logrus.Debug("Change password validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", user.ID).Info("Change password request received")
	updated, err := c.userService.ChangePassword(ctx.Request().Context(), user.ID, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("Change password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", user.ID).Info("Password changed")
	return ctx.JSON(http.StatusOK, httpdto.NewUserEnvelope(updated))
}
