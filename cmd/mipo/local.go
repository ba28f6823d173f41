package main

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/shhac/mipo/internal/domain"
	"github.com/shhac/mipo/internal/i18n"
)

type galleryCmd struct {
	List   galleryListCmd   `cmd:"" help:"List saved strips, newest first."`
	Remove galleryRemoveCmd `cmd:"" help:"Remove a saved strip."`
}

type galleryListCmd struct{}

func (c *galleryListCmd) Run(rc *runContext) error {
	entries, err := rc.app.Storage().GalleryEntries()
	if err != nil {
		return err
	}
	rc.out.Heading(i18n.T(rc.app.Locale(), i18n.KeyGallery))
	if len(entries) == 0 {
		rc.out.Println("Nothing saved yet.")
		return nil
	}
	for _, e := range entries {
		rc.out.Println("%s  %-14s %-12s %s",
			rc.out.Highlight(e.ID),
			humanize.Time(e.CreatedAt),
			e.TemplateName,
			rc.out.Faint(e.URI))
	}
	return nil
}

type galleryRemoveCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *galleryRemoveCmd) Run(rc *runContext) error {
	if err := rc.app.Storage().RemoveGalleryEntry(c.ID); err != nil {
		return err
	}
	rc.out.Success("Removed %s", c.ID)
	return nil
}

type plansCmd struct{}

func (c *plansCmd) Run(rc *runContext) error {
	loc := rc.app.Locale()
	current := currentPlan(rc)

	rc.out.Heading(i18n.T(loc, i18n.KeyPricingTitle))
	for _, p := range domain.Plans {
		name := p.Name
		if p.Highlight {
			name = rc.out.Highlight(name)
		}
		line := name + "  " + p.Price
		if p.ID == current {
			line += "  " + rc.out.Faint("("+i18n.T(loc, i18n.KeyCurrentPlan)+")")
		}
		rc.out.Println("%s", line)
		rc.out.Println("  %s", rc.out.Faint(p.Audience))
		for _, f := range p.Features {
			rc.out.Println("  - %s", f)
		}
	}
	if !rc.app.Purchases().Available() {
		rc.out.Warn("In-app purchases are not available on this device.")
	}
	return nil
}

// currentPlan prefers the plan on the cached profile, then the local paid
// flag.
func currentPlan(rc *runContext) domain.PlanID {
	if u := rc.app.Auth().CachedUser(); u != nil && u.PlanID != "" {
		return domain.PlanID(strings.ToUpper(u.PlanID))
	}
	prefs, err := rc.app.Storage().Preferences()
	if err == nil && prefs.HasPaidPlan {
		return domain.PlanPro
	}
	return domain.PlanFree
}

type purchaseCmd struct {
	Plan string `arg:"" help:"Plan id: WEEKLY, PRO or ANNUAL."`
}

func (c *purchaseCmd) Run(rc *runContext) error {
	id := domain.PlanID(strings.ToUpper(strings.TrimSpace(c.Plan)))
	if err := rc.app.Purchases().PurchasePlan(rc.ctx, id); err != nil {
		return err
	}
	rc.out.Success("Purchased %s", id)
	return nil
}

type localeCmd struct {
	Code string `arg:"" optional:"" help:"Language code to switch to."`
}

func (c *localeCmd) Run(rc *runContext) error {
	if c.Code != "" {
		code, err := rc.app.SetLocale(c.Code)
		if err != nil {
			return err
		}
		rc.out.Success("%s: %s", i18n.T(code, i18n.KeyLanguage), i18n.Names[code])
		return nil
	}

	current := rc.app.Locale()
	rc.out.Heading(i18n.T(current, i18n.KeyLanguage))
	for _, code := range i18n.Supported {
		marker := "  "
		if code == current {
			marker = "* "
		}
		rc.out.Println("%s%-4s %s", marker, code, i18n.Names[code])
	}
	return nil
}

type onboardingCmd struct {
	Welcome     bool `help:"Mark the welcome screen as seen."`
	Permissions bool `help:"Mark camera permissions as done."`
	Reset       bool `help:"Show onboarding again next time."`
}

func (c *onboardingCmd) Run(rc *runContext) error {
	var err error
	prefs, _ := rc.app.Storage().Preferences()
	switch {
	case c.Reset:
		prefs, err = rc.app.ResetOnboarding()
	case c.Welcome || c.Permissions:
		prefs, err = rc.app.CompleteOnboarding(c.Welcome, c.Permissions)
	}
	if err != nil {
		return err
	}
	rc.out.Println("Welcome seen:     %t", prefs.WelcomeSeen)
	rc.out.Println("Permissions done: %t", prefs.PermissionsDone)
	return nil
}
