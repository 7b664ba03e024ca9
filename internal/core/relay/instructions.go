package relay

import (
	"strings"
	"text/template"
)

// Profile is the caller-supplied data interpolated into the system instruction.
type Profile struct {
	UserName string
	Topic    string
}

// Instructions renders the system instruction sent when a backend session opens.
type Instructions struct {
	tpl *template.Template
}

func ParseInstructions(text string) (*Instructions, error) {
	tpl, err := template.New("instruction").Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, err
	}
	return &Instructions{tpl: tpl}, nil
}

// Render returns "" for a nil receiver.
func (i *Instructions) Render(p Profile) (string, error) {
	if i == nil {
		return "", nil
	}
	p.UserName = strings.TrimSpace(p.UserName)
	p.Topic = strings.TrimSpace(p.Topic)
	var b strings.Builder
	if err := i.tpl.Execute(&b, p); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
