package mod

import (
	"errors"
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
)

const (
	msgSpecifyUser   = "ℹ️ **Especifica un usuario para quitarle una advertencia.**"
	msgUnknownUser   = "❓ **Usuario desconocido**"
	msgInvalidDate   = "⚠ **Fecha inválida**"
	msgWarnNotFound  = "❓ **404: Advertencia no encontrada**"
	msgInternalError = "❌ Error al consultar la base de datos."
	msgNoService     = "❌ El sistema de moderación no está disponible."
)

// UnwarnErrorReply is the reply for a failed unwarn
func UnwarnErrorReply(err error) string {
	switch {
	case errors.Is(err, warns.ErrTargetCount):
		return msgSpecifyUser
	case errors.Is(err, warns.ErrUserUnknown):
		return msgUnknownUser
	case errors.Is(err, warns.ErrInvalidDate):
		return msgInvalidDate
	case errors.Is(err, warns.ErrWarnNotFound):
		return msgWarnNotFound
	default:
		return msgInternalError
	}
}

// UnwarnReply is the reply for a completed unwarn. actor and target are
// already formatted (mentions or names).
func UnwarnReply(actor, target string, r *warns.UnwarnResult) string {
	if r.NoOp {
		return fmt.Sprintf("ℹ️ %s **ya no tiene advertencias.**", target)
	}
	return fmt.Sprintf("❎ %s **perdonó** a %s por **%d**/%d: %s",
		actor, target, r.ActiveCount, r.Threshold, r.Label())
}

// WarnReply is the reply for an issued warning
func WarnReply(actor, target string, r *warns.WarnResult) string {
	msg := fmt.Sprintf("⚠️ %s **advirtió** a %s (**%d**/%d): %s",
		actor, target, r.ActiveCount, r.Threshold, warns.WarningLabel(r.Warning))
	if r.Banned {
		msg += fmt.Sprintf("\n🚫 %s fue **baneado** de %d grupos.", target, len(r.Bans)-warns.Failed(r.Bans))
	}
	return msg
}
