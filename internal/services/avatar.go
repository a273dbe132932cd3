package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"

	"github.com/medialog/medialog-backend/internal/logger"
	"github.com/medialog/medialog-backend/internal/types"
	"github.com/medialog/medialog-backend/internal/utils"
)

// AvatarService renders initials avatars for new accounts and processes
// uploaded replacement images. Files land on the local media dir and are
// served statically; keys are versioned so a replaced avatar never hits a
// stale browser cache.
type AvatarService interface {
	CreateUserAvatar(ctx context.Context, user *types.User) error
	SetUserAvatarFromImage(ctx context.Context, user *types.User, raw []byte) error
	GenerateUserAvatar(user *types.User) (bytes.Buffer, error)
}

type avatarService struct {
	log       *logger.Logger
	mediaDir  string
	urlPrefix string
	bgColors  []color.NRGBA
	fontFace  font.Face
}

var avatarPalette = []color.NRGBA{
	{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	{R: 0x06, G: 0xB6, B: 0xD4, A: 0xFF},
	{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
}

func NewAvatarService(log *logger.Logger) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	mediaDir := utils.GetEnv("AVATAR_DIR", "./media/avatars", serviceLog)
	urlPrefix := utils.GetEnv("AVATAR_URL_PREFIX", "/media/avatars", serviceLog)
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}

	var face font.Face
	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath != "" {
		loaded, err := loadFontFace(fontPath, 206)
		if err != nil {
			return nil, fmt.Errorf("load avatar font: %w", err)
		}
		face = loaded
	} else {
		serviceLog.Warn("AVATAR_FONT not set, using built-in font face")
	}

	return &avatarService{
		log:       serviceLog,
		mediaDir:  mediaDir,
		urlPrefix: urlPrefix,
		bgColors:  avatarPalette,
		fontFace:  face,
	}, nil
}

func (as *avatarService) CreateUserAvatar(ctx context.Context, user *types.User) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	buf, err := as.GenerateUserAvatar(user)
	if err != nil {
		return err
	}
	return as.store(user, buf.Bytes())
}

func (as *avatarService) GenerateUserAvatar(user *types.User) (bytes.Buffer, error) {
	const size = 512
	var buf bytes.Buffer

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.bgColors[rand.Intn(len(as.bgColors))]
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initials := computeInitials(user.FirstName, user.LastName)
	if as.fontFace != nil {
		dc.SetFontFace(as.fontFace)
	}
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2
	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2), cy+(th/2))

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("encode png: %w", err)
	}
	return buf, nil
}

func (as *avatarService) SetUserAvatarFromImage(ctx context.Context, user *types.User, raw []byte) error {
	if user == nil || user.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	processed, err := processUploadedAvatar(raw, 512)
	if err != nil {
		return err
	}
	return as.store(user, processed.Bytes())
}

func (as *avatarService) store(user *types.User, png []byte) error {
	oldURL := strings.TrimSpace(user.AvatarURL)

	name := fmt.Sprintf("%s_%d.png", user.ID.String(), time.Now().UnixNano())
	path := filepath.Join(as.mediaDir, name)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write avatar file: %w", err)
	}
	user.AvatarURL = as.urlPrefix + "/" + name

	// Best-effort delete of the replaced file after the new one exists.
	if oldURL != "" && strings.HasPrefix(oldURL, as.urlPrefix+"/") {
		oldName := strings.TrimPrefix(oldURL, as.urlPrefix+"/")
		if err := os.Remove(filepath.Join(as.mediaDir, filepath.Base(oldName))); err != nil && !os.IsNotExist(err) {
			as.log.Warn("failed to delete old avatar", "path", oldName, "error", err)
		}
	}
	return nil
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	// Center-crop to square.
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	side := w
	if h < w {
		side = h
	}
	x0 := b.Min.X + (w-side)/2
	y0 := b.Min.Y + (h-side)/2

	cropRect := image.Rect(0, 0, side, side)
	cropped := image.NewRGBA(cropRect)
	draw.Draw(cropped, cropRect, img, image.Point{X: x0, Y: y0}, draw.Src)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), cropped, cropped.Bounds(), draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

func loadFontFace(path string, points float64) (font.Face, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}

func computeInitials(first, last string) string {
	var sb strings.Builder
	for _, s := range []string{first, last} {
		s = strings.TrimSpace(s)
		if s != "" {
			sb.WriteString(strings.ToUpper(s[:1]))
		}
	}
	if sb.Len() == 0 {
		return "?"
	}
	return sb.String()
}
