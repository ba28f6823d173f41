package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"

	"github.com/shhac/mipo/internal/domain"
	apperrors "github.com/shhac/mipo/internal/errors"
	"github.com/shhac/mipo/internal/i18n"
	"github.com/shhac/mipo/internal/photo"
)

type statusCmd struct{}

func (c *statusCmd) Run(rc *runContext) error {
	s := rc.app.Bootstrap(rc.ctx)

	rc.out.Heading("mipo " + rc.out.Faint(rc.app.Config().ServerURL))
	rc.out.Println("Templates:    %d", len(s.Templates))
	rc.out.Println("Backgrounds:  %d", len(s.Backgrounds))
	if s.User != nil {
		rc.out.Println("Signed in:    %s", s.User.Email)
	} else {
		rc.out.Println("Signed in:    %s", i18n.T(s.Locale, i18n.KeyNotSignedIn))
	}
	rc.out.Println("%-13s %d", i18n.T(s.Locale, i18n.KeyGallery)+":", len(s.Gallery))
	rc.out.Println("Paid plan:    %t", s.Preferences.HasPaidPlan)
	rc.out.Println("%-13s %s", i18n.T(s.Locale, i18n.KeyLanguage)+":", i18n.Names[s.Locale])

	var merr *multierror.Error
	if errors.As(s.Warnings, &merr) {
		for _, w := range merr.Errors {
			rc.out.Warn("! %s", apperrors.UserMessage(w))
		}
	}
	return nil
}

type templatesCmd struct{}

func (c *templatesCmd) Run(rc *runContext) error {
	list, err := rc.app.Client().FetchTemplates(rc.ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		rc.out.Println("No templates available.")
		return nil
	}
	for _, t := range list {
		slots := fmt.Sprintf("%d photos", t.SlotCount)
		if len(t.SlotOptions) > 0 {
			opts := make([]string, len(t.SlotOptions))
			for i, n := range t.SlotOptions {
				opts[i] = fmt.Sprint(n)
			}
			slots += " (" + strings.Join(opts, "/") + ")"
		}
		rc.out.Println("%-16s %-20s %s %s", rc.out.Highlight(t.ID), t.Name, slots, rc.out.Faint(t.Image()))
	}
	return nil
}

type backgroundsCmd struct{}

func (c *backgroundsCmd) Run(rc *runContext) error {
	list, err := rc.app.Client().FetchBackgrounds(rc.ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		rc.out.Println("No backgrounds available.")
		return nil
	}
	for _, b := range list {
		rc.out.Println("%-16s %-20s %s", rc.out.Highlight(b.ID), b.Name, rc.out.Faint(b.Image()))
	}
	return nil
}

type generateCmd struct {
	Template   string   `short:"t" required:"" help:"Template id."`
	Background string   `short:"b" help:"Background id."`
	Slots      int      `help:"Photos in the strip. Defaults to the template's count."`
	Title      string   `help:"Title printed on the strip."`
	Names      string   `help:"Names printed on the strip."`
	Date       string   `help:"Date printed on the strip."`
	Out        string   `short:"o" type:"path" default:"." help:"Directory for strips returned inline."`
	Share      bool     `help:"Print the save page for the strip."`
	Photos     []string `arg:"" type:"existingfile" help:"Photo files in slot order."`
}

func (c *generateCmd) Run(rc *runContext) error {
	w := rc.app.Wizard()
	client := rc.app.Client()

	templates, err := client.FetchTemplates(rc.ctx)
	if err != nil {
		return err
	}
	tpl, ok := findTemplate(templates, c.Template)
	if !ok {
		return apperrors.ValidationError{Field: "template", Message: fmt.Sprintf("Unknown template %q", c.Template)}
	}

	if err := w.Start(); err != nil {
		return err
	}
	if err := w.SelectTemplate(tpl); err != nil {
		return err
	}
	if c.Slots > 0 {
		if err := w.SetSlotCount(c.Slots); err != nil {
			return apperrors.ValidationError{Field: "slots", Message: err.Error()}
		}
	}
	if err := w.Continue(); err != nil {
		return err
	}

	if c.Background != "" {
		backgrounds, err := client.FetchBackgrounds(rc.ctx)
		if err != nil {
			return err
		}
		bg, ok := findBackground(backgrounds, c.Background)
		if !ok {
			return apperrors.ValidationError{Field: "background", Message: fmt.Sprintf("Unknown background %q", c.Background)}
		}
		if err := w.SelectBackground(&bg); err != nil {
			return err
		}
	}
	if err := w.SetDetails(c.Title, c.Names, c.Date); err != nil {
		return err
	}
	if err := w.Continue(); err != nil {
		return err
	}

	if want := w.Snapshot().SlotCount; len(c.Photos) != want {
		return apperrors.ValidationError{
			Field:   "photos",
			Message: fmt.Sprintf("%s needs %d photos, got %d", tpl.Name, want, len(c.Photos)),
		}
	}

	rc.out.Println("Generating %s strip from %d photos...", tpl.Name, len(c.Photos))
	out, err := rc.app.Generate(rc.ctx, c.Photos)
	if err != nil {
		return err
	}

	entry, err := rc.app.SaveResult(c.Out)
	if err != nil {
		return err
	}
	loc := rc.app.Locale()
	rc.out.Success("%s", i18n.T(loc, i18n.KeySaved))
	rc.out.Println("%s %s", i18n.T(loc, i18n.KeySavedHint), rc.out.Faint(entry.ID))
	rc.out.Println("%s", entry.URI)

	if c.Share {
		u, err := rc.app.ShareURL(rc.ctx, out)
		if err != nil {
			return err
		}
		rc.out.Println("Save page: %s", u)
	}
	return nil
}

type uploadCmd struct {
	File string `arg:"" type:"existingfile" help:"Image to upload."`
}

func (c *uploadCmd) Run(rc *runContext) error {
	info, err := os.Stat(c.File)
	if err != nil {
		return err
	}
	encoded, err := photo.NewEncoder(0, rc.app.Logger()).EncodeFile(c.File)
	if err != nil {
		return err
	}

	rc.out.Println("Uploading %s (%s)...", c.File, humanize.Bytes(uint64(info.Size())))
	imageURL, err := rc.app.Client().UploadTempImage(rc.ctx, encoded)
	if err != nil {
		return err
	}
	rc.out.Success("Uploaded")
	rc.out.Println("Image:     %s", imageURL)
	rc.out.Println("Save page: %s", rc.app.Client().SaveFrameURL(imageURL))
	return nil
}

func findTemplate(list []domain.Template, id string) (domain.Template, bool) {
	for _, t := range list {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Template{}, false
}

func findBackground(list []domain.Background, id string) (domain.Background, bool) {
	for _, b := range list {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Background{}, false
}
