package controller

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/logger"
	"intellius-chat-be/internal/pkg/serverutils"
	"intellius-chat-be/pkg/secrets"

	"github.com/gofiber/fiber/v2"
)

type SecretLoader interface {
	Load(ctx context.Context, name string) (map[string]string, error)
}

type SystemInfo struct {
	Name        string
	Version     string
	StaticDir   string
	SecretName  string
	ExposeDebug bool
}

type StaticFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
	URL  string `json:"url"`
}

type SecretsProbeResponse struct {
	SecretName   string            `json:"secret_name"`
	Keys         []string          `json:"keys"`
	MaskedValues map[string]string `json:"masked_values"`
}

type ISystemController interface {
	RegisterRoutes(app fiber.Router)
	Root(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	SecretsProbe(ctx *fiber.Ctx) error
	StaticFiles(ctx *fiber.Ctx) error
}

type systemController struct {
	info    SystemInfo
	secrets SecretLoader
	logger  logger.ILogger
}

// NewSystemController accepts a nil loader when no secret store is configured.
func NewSystemController(info SystemInfo, loader SecretLoader, log logger.ILogger) ISystemController {
	return &systemController{info: info, secrets: loader, logger: log}
}

func (c *systemController) RegisterRoutes(app fiber.Router) {
	app.Get("/", c.Root)
	app.Get("/health", c.Health)
	app.Get("/static-files", c.StaticFiles)
	if c.info.ExposeDebug {
		app.Get("/secrets/test", c.SecretsProbe)
	}
}

func (c *systemController) Root(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"message": c.info.Name,
		"version": c.info.Version,
	})
}

func (c *systemController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "healthy"})
}

// SecretsProbe shows which keys the configured secret holds, never the values.
func (c *systemController) SecretsProbe(ctx *fiber.Ctx) error {
	if c.secrets == nil || c.info.SecretName == "" {
		return apperror.Validation("SECRET_NAME is not configured")
	}

	values, err := c.secrets.Load(ctx.UserContext(), c.info.SecretName)
	if err != nil {
		c.logger.Warn("SYSTEM", "Secret probe failed", map[string]interface{}{
			"secret_name": c.info.SecretName,
			"error":       err.Error(),
		})
		return apperror.Dependency("Secret store unavailable", err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Secret loaded", SecretsProbeResponse{
		SecretName:   c.info.SecretName,
		Keys:         secrets.Keys(values),
		MaskedValues: secrets.Mask(values),
	}))
}

func (c *systemController) StaticFiles(ctx *fiber.Ctx) error {
	files, err := listStaticFiles(c.info.StaticDir)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list static files", fiber.Map{"files": files}))
}

// listStaticFiles walks dir recursively. A missing dir yields an empty list.
func listStaticFiles(dir string) ([]StaticFile, error) {
	files := make([]StaticFile, 0)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		files = append(files, StaticFile{
			Name: d.Name(),
			Path: rel,
			URL:  "/static/" + rel,
		})
		return nil
	})
	return files, err
}
