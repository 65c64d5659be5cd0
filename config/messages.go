package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Messages is the catalog of customer-facing text. Everything the chat
// platform shows to a customer comes from here, never from code, so the
// restaurant can reword or translate without a rebuild. Defaults are in
// Portuguese, matching the deployments this was built for.
type Messages struct {
	Status   map[string]string `yaml:"status"`
	Errors   map[string]string `yaml:"errors"`
	Replies  map[string]string `yaml:"replies"`
	Reminder string            `yaml:"reminder"`
}

func defaultMessages() *Messages {
	return &Messages{
		Status: map[string]string{
			"pending":   "Recebemos seu pedido! Aguarde a confirmação.",
			"confirmed": "Seu pedido foi confirmado e já vai para a cozinha.",
			"preparing": "Seu pedido está sendo preparado.",
			"ready":     "Seu pedido está pronto!",
			"delivered": "Pedido entregue. Bom apetite!",
			"cancelled": "Seu pedido foi cancelado.",
		},
		Errors: map[string]string{
			"empty_items":        "O pedido precisa ter pelo menos um item.",
			"missing_contact":    "Informe um telefone para acompanhar o pedido.",
			"invalid_quantity":   "Quantidade inválida para um dos itens.",
			"order_not_found":    "Pedido não encontrado.",
			"order_closed":       "Este pedido já foi finalizado e não pode ser alterado.",
			"requires_approval":  "Este pedido já está em preparo. Chame um atendente para cancelar.",
			"invalid_transition": "Mudança de status inválida para este pedido.",
			"unknown_menu_item":  "Um dos itens não existe no cardápio.",
			"internal":           "Algo deu errado. Tente novamente em instantes.",
		},
		Replies: map[string]string{
			"waiter_called":   "Um garçom está a caminho da sua mesa!",
			"bill_requested":  "Sua conta está sendo preparada.",
			"question_sent":   "Sua pergunta foi encaminhada. Já respondemos!",
			"complaint_sent":  "Sentimos muito! Sua reclamação foi registrada e será tratada com prioridade.",
			"rating_sent":     "Obrigado pela avaliação!",
			"suggestion_sent": "Obrigado pela sugestão!",
		},
		Reminder: "Olá %s! Passando para lembrar da sua reserva amanhã às %s para %d pessoas. Até lá!",
	}
}

// LoadMessages reads the YAML catalog at path over the compiled-in
// defaults. A missing file is fine; a broken one falls back too.
func LoadMessages(path string) *Messages {
	msgs := defaultMessages()

	data, err := os.ReadFile(path)
	if err != nil {
		return msgs
	}

	var overlay Messages
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return msgs
	}

	for k, v := range overlay.Status {
		msgs.Status[k] = v
	}
	for k, v := range overlay.Errors {
		msgs.Errors[k] = v
	}
	for k, v := range overlay.Replies {
		msgs.Replies[k] = v
	}
	if overlay.Reminder != "" {
		msgs.Reminder = overlay.Reminder
	}
	return msgs
}

// StatusMessage returns the customer-facing text for an order status.
func (m *Messages) StatusMessage(status string) string {
	if msg, ok := m.Status[status]; ok {
		return msg
	}
	return ""
}

// ErrorMessage returns the customer-facing text for an error key.
func (m *Messages) ErrorMessage(key string) string {
	if msg, ok := m.Errors[key]; ok {
		return msg
	}
	return m.Errors["internal"]
}

// Reply returns the confirmation text for a customer-initiated action.
func (m *Messages) Reply(key string) string {
	return m.Replies[key]
}
