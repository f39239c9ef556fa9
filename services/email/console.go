package emailsvc

import (
	"log"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/louisFankam/edumali-sub000/core"
)

var (
	SentMessages = make([]core.EmailMessage, 0)
	mu           sync.Mutex
)

// consoleService prints messages instead of sending them; the DEV default.
type consoleService struct {
	defaultFromEmail string
	subjPrefix       string
	disableOutput    bool
}

var _ core.EmailService = (*consoleService)(nil)

func NewConsoleService() core.EmailService {
	return &consoleService{
		defaultFromEmail: core.Conf.GetString("defaultFromEmail"),
		subjPrefix:       "[" + core.Conf.GetString("appName") + "] ",
	}
}

func (svc consoleService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		go svc.sendMessage(msg)
	}
}

func (svc consoleService) sendMessage(msg *core.EmailMessage) {
	if msg.HasRecipients() && (msg.HasContent() || msg.HasAttachments()) {
		svc.send(*msg)
		mu.Lock()
		SentMessages = append(SentMessages, *msg)
		mu.Unlock()
	}
}

func (svc consoleService) send(msg core.EmailMessage) {
	body := new(strings.Builder)
	body.WriteString("From: " + svc.defaultFromEmail + "\r\n")
	body.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	body.WriteString("Subject: " + svc.subjPrefix + msg.Subject + "\r\n")
	body.WriteString("To: " + svc.joinAddresses(msg.To) + "\r\n")
	if len(msg.Cc) > 0 {
		body.WriteString("CC: " + svc.joinAddresses(msg.Cc) + "\r\n")
	}
	body.WriteString("\r\n" + msg.TextContent + "\r\n")
	for _, at := range msg.Attachments {
		body.WriteString("Attachment: " + at.Filename + " (" + at.ContentType + ")\r\n")
	}
	if !svc.disableOutput {
		log.Println(body.String())
	}
}

func (svc consoleService) joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock() core.EmailService {
	return &consoleServiceMock{
		consoleService: consoleService{
			defaultFromEmail: core.Conf.GetString("defaultFromEmail"),
			subjPrefix:       "[" + core.Conf.GetString("appName") + "] ",
			disableOutput:    true,
		},
	}
}

func (svc *consoleServiceMock) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		// run synchronously
		svc.sendMessage(msg)
	}
}
