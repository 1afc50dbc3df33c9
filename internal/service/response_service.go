package service

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/cobrancabot/cobrancabot-go/internal/model"
	"go.uber.org/zap"
)

const escalationMessageCount = 15

// ResponseService renders replies from templates, extracted entities and
// memory-derived personalization, and flags escalation and confirmation.
type ResponseService struct {
	rng    *rand.Rand
	mu     sync.Mutex
	logger *zap.Logger
}

// NewResponseService creates a composer. Template choice is pseudo-random;
// scoring never is.
func NewResponseService(logger *zap.Logger) *ResponseService {
	return &ResponseService{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger,
	}
}

type toneBucket string

const (
	toneEmpathetic toneBucket = "empathetic"
	toneUpbeat     toneBucket = "upbeat"
	toneNeutral    toneBucket = "neutral"
)

func toneFor(emotion model.EmotionalState) toneBucket {
	switch emotion.Base() {
	case model.EmotionAngry, model.EmotionNegative, model.EmotionFrustrated:
		return toneEmpathetic
	case model.EmotionPositive, model.EmotionRelieved:
		return toneUpbeat
	}
	return toneNeutral
}

// Placeholders: {name}, {amount}, {date}, {protocol}.
var responseTemplates = map[model.IntentCategory]map[toneBucket][]string{
	model.IntentInvoiceRequest: {
		toneNeutral: {
			"Claro{name}! Vou gerar a segunda via do seu boleto agora mesmo.",
			"Sem problemas{name}, já estou emitindo sua segunda via.",
			"Pode deixar{name}! Segue em instantes o boleto atualizado.",
		},
		toneEmpathetic: {
			"Entendo{name}, sei que isso incomoda. Já estou gerando sua segunda via.",
			"Desculpe o transtorno{name}. Vou emitir o boleto atualizado agora.",
		},
		toneUpbeat: {
			"Ótimo{name}! Já estou gerando sua segunda via.",
		},
	},
	model.IntentInvoiceValueInquiry: {
		toneNeutral: {
			"O valor atualizado da sua fatura{name} é de R$ {amount}.",
			"Consultei aqui{name}: o total em aberto é R$ {amount}.",
		},
		toneEmpathetic: {
			"Entendo sua preocupação{name}. O valor em aberto hoje é R$ {amount}.",
		},
		toneUpbeat: {
			"Claro{name}! O valor atualizado é R$ {amount}.",
		},
	},
	model.IntentDueDateInquiry: {
		toneNeutral: {
			"Seu boleto vence em {date}.",
			"A data de vencimento{name} é {date}.",
		},
		toneEmpathetic: {
			"Fique tranquilo{name}, o vencimento é {date} e ainda dá tempo.",
		},
		toneUpbeat: {
			"O vencimento é {date}{name}!",
		},
	},
	model.IntentInstallmentNegotiation: {
		toneNeutral: {
			"Podemos sim parcelar{name}. Consigo dividir em até 12 vezes. Quer que eu simule?",
			"Temos condições de parcelamento{name}. Me diz em quantas vezes ficaria bom para você?",
		},
		toneEmpathetic: {
			"Entendo o momento{name}, e quero ajudar. Consigo parcelar sua dívida em condições facilitadas.",
		},
		toneUpbeat: {
			"Boa{name}! Vamos montar um parcelamento que caiba no seu bolso.",
		},
	},
	model.IntentDiscountNegotiation: {
		toneNeutral: {
			"Para pagamento à vista consigo um desconto especial{name}. Posso enviar a proposta?",
			"Tenho uma condição com desconto para quitação{name}. Quer ver os números?",
		},
		toneEmpathetic: {
			"Sei que o valor pesa{name}. Consigo um desconto para acerto à vista, posso detalhar?",
		},
		toneUpbeat: {
			"Perfeito{name}! Consigo um desconto para pagamento à vista.",
		},
	},
	model.IntentPaymentConfirmation: {
		toneNeutral: {
			"Obrigado{name}! Vou verificar a compensação do pagamento{amountRef} e confirmo em seguida.",
			"Recebido{name}. Assim que o pagamento{amountRef} compensar, sua situação é regularizada.",
		},
		toneEmpathetic: {
			"Agradeço o retorno{name}. Vou conferir o pagamento{amountRef} e te aviso assim que baixar.",
		},
		toneUpbeat: {
			"Ótima notícia{name}! Já estou confirmando o pagamento{amountRef}.",
		},
	},
	model.IntentUndueChargeComplaint: {
		toneNeutral: {
			"Vou abrir uma verificação sobre essa cobrança{name}. Você pode me passar mais detalhes?",
		},
		toneEmpathetic: {
			"Sinto muito por isso{name}. Registrei sua contestação e vou encaminhar para análise imediata.",
			"Entendo sua indignação{name}. Vou apurar essa cobrança agora e te retorno.",
		},
		toneUpbeat: {
			"Certo{name}, vou verificar essa cobrança para você.",
		},
	},
	model.IntentIncorrectValueComplaint: {
		toneNeutral: {
			"Vou revisar o cálculo do valor{name} e te retorno com o detalhamento.",
		},
		toneEmpathetic: {
			"Peço desculpas pelo transtorno{name}. Já solicitei a revisão do valor cobrado.",
		},
		toneUpbeat: {
			"Claro{name}, vou conferir o valor e te retorno.",
		},
	},
	model.IntentGreeting: {
		toneNeutral: {
			"Olá{name}! Sou o assistente virtual de negociação. Como posso ajudar?",
			"Oi{name}, tudo bem? Estou aqui para ajudar com sua fatura.",
		},
		toneEmpathetic: {
			"Olá{name}. Estou aqui para ajudar a resolver sua situação da melhor forma.",
		},
		toneUpbeat: {
			"Oi{name}! Que bom falar com você. Como posso ajudar?",
		},
	},
	model.IntentFarewell: {
		toneNeutral: {
			"Obrigado pelo contato{name}! Qualquer coisa é só chamar.",
			"Até mais{name}! Estou por aqui se precisar.",
		},
		toneEmpathetic: {
			"Obrigado{name}. Conte comigo para o que precisar.",
		},
		toneUpbeat: {
			"Valeu{name}! Até a próxima.",
		},
	},
	model.IntentAffirmation: {
		toneNeutral: {
			"Combinado{name}! Vou dar andamento agora.",
			"Perfeito{name}, seguimos assim então.",
		},
		toneEmpathetic: {
			"Combinado{name}. Vou cuidar disso para você.",
		},
		toneUpbeat: {
			"Fechado{name}! Já estou providenciando.",
		},
	},
	model.IntentNegation: {
		toneNeutral: {
			"Entendi{name}. Posso te apresentar outras condições de pagamento?",
		},
		toneEmpathetic: {
			"Compreendo{name}. Se quiser, posso buscar uma condição que faça sentido para você.",
		},
		toneUpbeat: {
			"Sem problemas{name}. Podemos ver alternativas.",
		},
	},
	model.IntentClarificationRequest: {
		toneNeutral: {
			"Claro{name}, deixa eu explicar melhor: estou falando da sua fatura em aberto.",
			"Posso explicar sim{name}. Sobre qual ponto ficou dúvida?",
		},
		toneEmpathetic: {
			"Desculpa se não fui claro{name}. Vou explicar de novo, passo a passo.",
		},
		toneUpbeat: {
			"Claro{name}! Te explico rapidinho.",
		},
	},
	model.IntentUnknown: {
		toneNeutral: {
			"Não consegui entender bem{name}. Você pode me dizer se é sobre boleto, valor ou negociação?",
		},
		toneEmpathetic: {
			"Desculpe{name}, não entendi direito. Pode repetir de outra forma?",
		},
		toneUpbeat: {
			"Me ajuda aqui{name}: é sobre boleto, valor ou negociação?",
		},
	},
}

// Call-to-action suffix per intent.
var ctaSuffixes = map[model.IntentCategory]string{
	model.IntentInvoiceRequest:         " Prefere receber por aqui mesmo ou por e-mail?",
	model.IntentInvoiceValueInquiry:    " Quer aproveitar e já negociar condições de pagamento?",
	model.IntentDueDateInquiry:         " Quer que eu te lembre um dia antes do vencimento?",
	model.IntentInstallmentNegotiation: " Posso já simular as parcelas?",
	model.IntentDiscountNegotiation:    " Posso enviar a proposta com desconto?",
	model.IntentUndueChargeComplaint:   " Protocolo de contestação será enviado em seguida.",
}

var secondaryIntentLabels = map[model.IntentCategory]string{
	model.IntentInvoiceRequest:         "envio do boleto",
	model.IntentInvoiceValueInquiry:    "consulta de valor",
	model.IntentDueDateInquiry:         "data de vencimento",
	model.IntentInstallmentNegotiation: "parcelamento",
	model.IntentDiscountNegotiation:    "desconto",
	model.IntentPaymentConfirmation:    "confirmação de pagamento",
}

// Compose renders the reply for a classification. fallbackLevel is empty on
// the primary path; requiresConfirmation comes from the cascade.
func (s *ResponseService) Compose(
	result *model.ClassificationResult,
	convo convoContext,
	displayName string,
	fallbackLevel string,
	requiresConfirmation bool,
) model.Response {
	tone := toneFor(result.EmotionalState)
	text := s.pickTemplate(result.PrimaryIntent, tone)
	text = s.fillPlaceholders(text, result, displayName)
	text = s.personalize(text, convo)
	text += s.secondarySummary(result.SecondaryIntents)
	if cta, ok := ctaSuffixes[result.PrimaryIntent]; ok && fallbackLevel == "" {
		text += cta
	}

	escalate := result.EmotionalState.Base() == model.EmotionAngry ||
		result.PrimaryIntent.IsComplaint() ||
		convo.messageCount > escalationMessageCount ||
		result.Confidence < 0.5

	return model.Response{
		Text:                 text,
		Intent:               string(result.PrimaryIntent),
		Confidence:           result.Confidence,
		EntitiesDetected:     len(result.Entities),
		EmotionalState:       string(result.EmotionalState),
		MultipleIntents:      len(result.SecondaryIntents),
		Escalate:             escalate,
		FallbackLevel:        fallbackLevel,
		RequiresConfirmation: requiresConfirmation,
	}
}

func (s *ResponseService) pickTemplate(intent model.IntentCategory, tone toneBucket) string {
	buckets, ok := responseTemplates[intent]
	if !ok {
		buckets = responseTemplates[model.IntentUnknown]
	}
	variants := buckets[tone]
	if len(variants) == 0 {
		variants = buckets[toneNeutral]
	}
	s.mu.Lock()
	idx := s.rng.Intn(len(variants))
	s.mu.Unlock()
	return variants[idx]
}

func (s *ResponseService) fillPlaceholders(text string, result *model.ClassificationResult, displayName string) string {
	name := ""
	if displayName != "" {
		name = ", " + strings.TrimSpace(displayName)
	}
	amount, date, protocol := "", "", ""
	for _, ent := range result.Entities {
		switch ent.Type {
		case model.EntityMoney:
			if amount == "" {
				amount = ent.NormalizedValue
			}
		case model.EntityDate:
			if date == "" {
				date = ent.NormalizedValue
			}
		case model.EntityProtocol:
			if protocol == "" {
				protocol = ent.NormalizedValue
			}
		}
	}
	amountRef := ""
	if amount != "" {
		amountRef = " de R$ " + strings.Replace(amount, ".", ",", 1)
	}
	if amount == "" {
		amount = "--"
	}
	if date == "" {
		date = "breve"
	}

	r := strings.NewReplacer(
		"{name}", name,
		"{amount}", strings.Replace(amount, ".", ",", 1),
		"{amountRef}", amountRef,
		"{date}", date,
		"{protocol}", protocol,
	)
	return r.Replace(text)
}

// personalize prepends memory-derived acknowledgments.
func (s *ResponseService) personalize(text string, convo convoContext) string {
	switch {
	case convo.repeatedFrustration:
		return "Sei que esse assunto já vem te desgastando, e quero resolver de vez. " + text
	case convo.repeatedUrgency:
		return "Entendi a urgência e vou priorizar seu atendimento. " + text
	}
	return text
}

func (s *ResponseService) secondarySummary(secondary []model.IntentCategory) string {
	var labels []string
	for _, it := range secondary {
		if label, ok := secondaryIntentLabels[it]; ok {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return ""
	}
	return " Também anotei aqui: " + strings.Join(labels, ", ") + "."
}
