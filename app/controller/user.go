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

type UserController struct {
	userService *service.UserService
	tokens      *service.TokenIssuer
}

func NewUserController(userService *service.UserService, tokens *service.TokenIssuer) *UserController {
	return &UserController{userService: userService, tokens: tokens}
}

func (c *UserController) FindAll(ctx echo.Context) error {
	users, err := c.userService.FindAll(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Listing users failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewUsersResponse(users))
}

// Create is the registration alternate path; the response carries a freshly
// issued access token in the body instead of a cookie.
func (c *UserController) Create(ctx echo.Context) error {
	var req httpdto.SignUpRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind create user request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := httpdto.Validate(&req); err != nil {
		logrus.WithField("email", req.User.Email).Debug("Create user validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	logrus.WithField("email", req.User.Email).Info("Create user request received")
	user, err := c.userService.Create(ctx.Request().Context(), service.CreateUserInput{
		Email:    req.User.Email,
		Username: req.User.Username,
		Name:     req.User.Name,
		Password: req.User.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrCredentialTaken) {
			logrus.WithField("email", req.User.Email).Warn("Create user failed: credential taken")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email or username already taken"})
		}
		logrus.WithError(err).WithField("email", req.User.Email).Error("Create user failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	token, err := c.tokens.IssueAccess(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue access token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", user.ID).Info("User created")
	return ctx.JSON(http.StatusCreated, httpdto.NewTokenizedUserEnvelope(user, token))
}

func (c *UserController) Current(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	token, err := c.tokens.IssueAccess(user.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue access token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewTokenizedUserEnvelope(user, token))
}

func (c *UserController) Update(ctx echo.Context) error {
	var req httpdto.UpdateUserRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind update user request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if err := httpdto.Validate(&req); err != nil {
		logrus.Debug("Update user validation failed")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
	}

	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", user.ID).Info("Update user request received")
	updated, err := c.userService.Update(ctx.Request().Context(), user.ID, service.UpdateUserInput{
		Email:    req.User.Email,
		Username: req.User.Username,
		Name:     req.User.Name,
		Bio:      req.User.Bio,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		if errors.Is(err, service.ErrCredentialTaken) {
			logrus.WithField("user_id", user.ID).Warn("Update user failed: credential taken")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email or username already taken"})
		}
		logrus.WithError(err).WithField("user_id", user.ID).Error("Update user failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	token, err := c.tokens.IssueAccess(updated.ID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", updated.ID).Error("Failed to issue access token")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewTokenizedUserEnvelope(updated, token))
}

func (c *UserController) AddAvatar(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		logrus.WithError(err).Debug("Missing avatar file")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "file is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to open uploaded file")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}
	defer src.Close()

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"filename": fileHeader.Filename,
		"size":     fileHeader.Size,
	}).Info("Avatar upload received")

	avatar, err := c.userService.AddAvatar(ctx.Request().Context(), user.ID, src, fileHeader.Size, fileHeader.Filename)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Avatar upload failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"file_id": avatar.ID,
	}).Info("Avatar stored")
	return ctx.JSON(http.StatusOK, httpdto.NewFileResponse(avatar))
}

func (c *UserController) DeleteAvatar(ctx echo.Context) error {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	logrus.WithField("user_id", user.ID).Info("Avatar delete request received")
	if err := c.userService.DeleteAvatar(ctx.Request().Context(), user.ID); err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Avatar delete failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "avatar deleted"})
}
