package advisor

import (
	"errors"
	"strings"
)

type message struct{ hu, en string }

var (
	msgGenerate = message{
		hu: "Hiba történt a beállítások létrehozása közben. Kérjük, próbálja újra később.",
		en: "Something went wrong while creating the setup. Please try again later.",
	}
	msgRefine = message{
		hu: "Hiba történt a beállítások finomhangolása közben. Kérjük, próbálja újra később.",
		en: "Something went wrong while fine-tuning the setup. Please try again later.",
	}
	msgNoSession = message{
		hu: "Nincs aktív chat munkamenet a finomhangoláshoz.",
		en: "There is no active chat session to fine-tune.",
	}
	msgSelection = message{
		hu: "Kérjük, válasszon autót, pályát és vezetési stílust.",
		en: "Please choose a car, a track and a driving style.",
	}
	msgFeedback = message{
		hu: "Kérjük, írja le, mit tapasztal az autóval.",
		en: "Please describe how the car behaves.",
	}
)

// UserMessage turns an action error into the text shown to the user. Causes
// are never included; they are logged where the error was produced.
func UserMessage(err error, lang string) string {
	if err == nil {
		return ""
	}
	var (
		pre *PreconditionError
		val *ValidationError
	)
	switch {
	case errors.As(err, &pre):
		return msgNoSession.in(lang)
	case errors.As(err, &val):
		if val.Field == "feedback" {
			return msgFeedback.in(lang)
		}
		return msgSelection.in(lang)
	}
	if opOf(err) == OpRefine {
		return msgRefine.in(lang)
	}
	return msgGenerate.in(lang)
}

func opOf(err error) string {
	var (
		cfg *ConfigurationError
		pv  *ProviderError
		pe  *ParseError
	)
	switch {
	case errors.As(err, &cfg):
		return cfg.Op
	case errors.As(err, &pv):
		return pv.Op
	case errors.As(err, &pe):
		return pe.Op
	}
	return OpGenerate
}

func (m message) in(lang string) string {
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return m.en
	}
	return m.hu
}
