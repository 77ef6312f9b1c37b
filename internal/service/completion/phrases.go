package completion

// Explicit termination phrases per language. A user saying any of these ends
// the interview immediately, no further negotiation.
var userTerminationPhrases = map[string][]string{
	"es": {
		"quiero terminar",
		"terminemos",
		"terminar la entrevista",
		"finalizar la entrevista",
		"no tengo más tiempo",
		"no tengo mas tiempo",
		"eso es todo",
		"ya terminé",
		"ya termine",
		"hasta aquí",
		"hasta aqui",
	},
	"en": {
		"i want to finish",
		"i want to stop",
		"let's stop",
		"lets stop",
		"that's all",
		"thats all",
		"end the interview",
		"i'm done",
		"im done",
	},
}

// Closing signals the agent itself emits when it judges the interview
// complete. Matched against the just-generated question.
var agentClosingPhrases = map[string][]string{
	"es": {
		"gracias por tu tiempo",
		"hemos terminado",
		"con esto concluimos",
		"damos por finalizada",
		"fin de la entrevista",
	},
	"en": {
		"thank you for your time",
		"this concludes",
		"we are done",
		"we're done",
		"end of the interview",
	},
}
