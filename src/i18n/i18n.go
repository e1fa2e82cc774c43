// Package i18n holds the message catalogs for user-facing notifications and
// emails. The locale is always passed in by the caller; there is no
// process-wide current language.
package i18n

import "fmt"

const DefaultLanguage = "en"

var catalogs = map[string]map[string]string{
	"en": {
		"notification_booking_created":  "%s made a booking for %s.",
		"notification_booking_paid":     "Booking %d has been paid.",
		"notification_booking_status":   "The status of booking %d was updated to %s.",
		"notification_booking_cancel":   "%s requested to cancel booking %d.",
		"mail_activation_subject":       "Account activation",
		"mail_activation_body":          "Hello %s,<br><br>Please activate your account by clicking this link:<br><br>%s<br><br>Regards",
		"mail_confirmation_subject":     "Booking confirmed",
		"mail_confirmation_body":        "Hello %s,<br><br>Your booking %d for %s from %s to %s is confirmed.<br><br>Regards",
		"mail_notification_subject":     "New notification",
	},
	"fr": {
		"notification_booking_created":  "%s a effectué une réservation pour %s.",
		"notification_booking_paid":     "La réservation %d a été payée.",
		"notification_booking_status":   "Le statut de la réservation %d a été mis à jour : %s.",
		"notification_booking_cancel":   "%s a demandé l'annulation de la réservation %d.",
		"mail_activation_subject":       "Activation du compte",
		"mail_activation_body":          "Bonjour %s,<br><br>Veuillez activer votre compte en cliquant sur ce lien :<br><br>%s<br><br>Cordialement",
		"mail_confirmation_subject":     "Réservation confirmée",
		"mail_confirmation_body":        "Bonjour %s,<br><br>Votre réservation %d pour %s du %s au %s est confirmée.<br><br>Cordialement",
		"mail_notification_subject":     "Nouvelle notification",
	},
}

// Normalize maps an arbitrary language tag onto a supported catalog language.
func Normalize(lang string) string {
	if _, ok := catalogs[lang]; ok {
		return lang
	}
	return DefaultLanguage
}

// T renders the message key in the given language, falling back to the
// default catalog for unknown languages or keys.
func T(lang, key string, args ...any) string {
	msgs, ok := catalogs[Normalize(lang)]
	if !ok {
		msgs = catalogs[DefaultLanguage]
	}
	format, ok := msgs[key]
	if !ok {
		format = catalogs[DefaultLanguage][key]
	}
	if format == "" {
		return key
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
