package handler

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/flatlogic/usermgmt-backend/internal/config"
)

// FileHandler serves uploads and downloads for entity attachments.
// Every stored object lives under cfg.UploadDir; the folder query
// parameter selects the entity/column bucket (e.g. users/avatar).
type FileHandler struct {
	Cfg *config.Config
}

func NewFileHandler(cfg *config.Config) *FileHandler {
	return &FileHandler{Cfg: cfg}
}

// safeJoin resolves rel under root and rejects anything that escapes it.
func safeJoin(root, rel string) (string, bool) {
	cleaned := filepath.Clean("/" + rel)
	full := filepath.Join(root, cleaned)
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	fullAbs, err := filepath.Abs(full)
	if err != nil {
		return "", false
	}
	if fullAbs != rootAbs && !strings.HasPrefix(fullAbs, rootAbs+string(os.PathSeparator)) {
		return "", false
	}
	return fullAbs, true
}

// Upload stores a multipart file under the folder named by the route
// suffix (e.g. POST /api/file/upload/users/avatar) and returns its
// private path.
func (h *FileHandler) Upload(c echo.Context) error {
	folder := c.Param("*")
	if folder == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "folder is required"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	name := c.FormValue("filename")
	if name == "" {
		name = fh.Filename
	}
	name = uuid.NewString() + "-" + filepath.Base(name)

	privateURL := folder + "/" + name
	dst, ok := safeJoin(h.Cfg.UploadDir, privateURL)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid folder"})
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return respondError(c, err)
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return respondError(c, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"privateUrl":  privateURL,
		"name":        fh.Filename,
		"sizeInBytes": fh.Size,
	})
}

// Download streams a previously uploaded file by its private path.
func (h *FileHandler) Download(c echo.Context) error {
	privateURL := c.QueryParam("privateUrl")
	if privateURL == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "privateUrl is required"})
	}
	path, ok := safeJoin(h.Cfg.UploadDir, privateURL)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid path"})
	}
	if _, err := os.Stat(path); err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "file not found"})
	}
	return c.File(path)
}
