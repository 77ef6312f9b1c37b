package detection

import "strings"

// Lexical cue tables per language, loaded once at init. The pre-filter is
// deliberately over-inclusive: a false positive costs one extra semantic
// call, a false negative silently drops a requirement.
var patternTable = map[string][]string{
	"es": {
		// action verbs
		"apruebo", "aprueba", "aprobar", "reviso", "revisa", "revisar",
		"proceso", "procesa", "procesar", "gestiono", "gestiona", "gestionar",
		"envío", "envio", "envía", "envia", "enviar", "recibo", "recibe", "recibir",
		"valido", "valida", "validar", "autorizo", "autoriza", "autorizar",
		"registro", "registra", "registrar", "verifico", "verifica", "verificar",
		"firmo", "firma", "firmar", "solicito", "solicita", "solicitar",
		"genero", "genera", "generar", "elaboro", "elabora", "elaborar",
		"coordino", "coordina", "coordinar", "superviso", "supervisa", "supervisar",
		"realizo", "realiza", "realizar", "ejecuto", "ejecuta", "ejecutar",
		// process-related nouns
		"procedimiento", "flujo", "trámite", "tramite", "tarea", "actividad",
		"solicitud", "aprobación", "aprobacion", "factura", "compra", "compras",
		"pedido", "orden", "reporte", "informe", "documento", "formulario",
		"contrato", "pago", "pagos", "nómina", "nomina", "inventario",
		// temporal/conditional connectives that mark step sequences
		"primero", "luego", "después", "despues", "entonces", "finalmente",
		"cada vez", "siempre que", "cuando llega", "todos los días",
		"todos los dias", "cada semana", "cada mes", "si el", "si la",
		"una vez que", "antes de", "después de",
	},
	"en": {
		"approve", "approves", "review", "reviews", "process", "processes",
		"manage", "manages", "send", "sends", "receive", "receives",
		"validate", "validates", "authorize", "authorizes", "register",
		"verify", "verifies", "sign", "signs", "request", "requests",
		"generate", "generates", "prepare", "prepares", "coordinate",
		"supervise", "execute", "handle", "handles", "submit", "submits",
		"procedure", "workflow", "task", "activity", "invoice", "purchase",
		"order", "report", "document", "form", "contract", "payment",
		"payroll", "inventory",
		"first", "then", "after that", "finally", "every time", "whenever",
		"each week", "each month", "every day", "once the", "before the",
	},
}

// MentionsPossibleProcess is the synchronous pre-filter gating semantic
// detection: pure, sub-millisecond, tuned for recall over precision.
// Unknown languages fall back to scanning every table.
func MentionsPossibleProcess(text, language string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	lowered := strings.ToLower(text)

	if patterns, ok := patternTable[language]; ok {
		return matchesAny(lowered, patterns)
	}
	for _, patterns := range patternTable {
		if matchesAny(lowered, patterns) {
			return true
		}
	}
	return false
}

func matchesAny(lowered string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lowered, p) {
			return true
		}
	}
	return false
}
