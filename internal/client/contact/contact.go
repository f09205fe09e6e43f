// Package contact builds the "chat with vendor" action shown on a service.
package contact

import (
	"errors"

	"vows-and-wishes/internal/client/notify"
	"vows-and-wishes/pkg/apiclient"
	"vows-and-wishes/pkg/whatsapp"

	"github.com/sirupsen/logrus"
)

const (
	LoginLabel = "Login to Chat"
	ChatLabel  = "Chat on WhatsApp"
)

// ErrLoginRequired is returned when a guest tries to open a chat
var ErrLoginRequired = errors.New("login required to chat")

// Identity is the signed-in user, if any
type Identity interface {
	User() (apiclient.User, bool)
}

// Action is what the chat button shows and where it leads
type Action struct {
	Enabled bool
	Label   string
	URL     string
}

type Handoff struct {
	identity    Identity
	notifier    notify.Notifier
	log         *logrus.Logger
	countryCode string
}

func NewHandoff(identity Identity, notifier notify.Notifier, log *logrus.Logger, countryCode string) *Handoff {
	if countryCode == "" {
		countryCode = whatsapp.DefaultCountryCode
	}
	return &Handoff{
		identity:    identity,
		notifier:    notifier,
		log:         log,
		countryCode: countryCode,
	}
}

// Action describes the chat button for svc. Guests get a disabled login
// prompt; a vendor number that cannot be dialled leaves URL empty.
func (h *Handoff) Action(svc apiclient.Service) Action {
	user, ok := h.identity.User()
	if !ok {
		return Action{Label: LoginLabel}
	}

	link, err := h.link(user, svc)
	if err != nil {
		return Action{Enabled: true, Label: ChatLabel}
	}
	return Action{Enabled: true, Label: ChatLabel, URL: link}
}

// Open returns the deep link for svc, notifying the user when it cannot be built
func (h *Handoff) Open(svc apiclient.Service) (string, error) {
	user, ok := h.identity.User()
	if !ok {
		return "", ErrLoginRequired
	}

	link, err := h.link(user, svc)
	if err != nil {
		h.log.Warnf("Cannot build chat link for %s (%q): %v", svc.ID, svc.ChatPhone(), err)
		h.notifier.Error(whatsapp.InvalidPhoneMessage)
		return "", err
	}
	return link, nil
}

func (h *Handoff) link(user apiclient.User, svc apiclient.Service) (string, error) {
	phone := ""
	if user.Phone != nil {
		phone = *user.Phone
	}
	return whatsapp.Link(svc.ChatPhone(), h.countryCode, whatsapp.InquiryMessage(user.Name, phone, svc.Name))
}
