package identityapi

import (
	"encoding/json"
	"fmt"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/workdesk/workdesk-go/internal/domain/auth"
)

// identityPayload is the wire form of an identity. Role comes in as a raw
// string and is normalized through the closed role set before it reaches the
// domain; pre-migration backends still emit lowercase legacy names.
type identityPayload struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Position     string `json:"position"`
	DepartmentID int    `json:"departmentId"`
	IsActive     bool   `json:"isActive"`
}

func (p identityPayload) toDomain() (domainauth.Identity, error) {
	role, err := domainauth.ParseRole(p.Role)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("identity %d: %w", p.ID, err)
	}
	return domainauth.Identity{
		ID:           p.ID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		Role:         role,
		Position:     p.Position,
		DepartmentID: p.DepartmentID,
		IsActive:     p.IsActive,
	}, nil
}

// decodedEnvelope is the shape-independent result of decoding a response
// body: the success flag, an optional message, and the raw identity payload.
type decodedEnvelope struct {
	Success bool
	Message string
	payload json.RawMessage
}

// Identity materializes the identity carried by the envelope.
func (e decodedEnvelope) Identity() (domainauth.Identity, error) {
	if len(e.payload) == 0 {
		return domainauth.Identity{}, fmt.Errorf("response reported success without a payload")
	}
	var p identityPayload
	if err := json.Unmarshal(e.payload, &p); err != nil {
		return domainauth.Identity{}, fmt.Errorf("decode identity payload: %w", err)
	}
	return p.toDomain()
}

// responseDecoder turns a raw response body into a decodedEnvelope. Message
// is a lenient variant for non-200 bodies that may not carry the full shape.
type responseDecoder interface {
	Decode(body []byte) (decodedEnvelope, error)
	Message(body []byte) string
}

// modernDecoder handles the current envelope: {isSuccess, data, message}.
type modernDecoder struct{}

type modernEnvelope struct {
	IsSuccess bool            `json:"isSuccess"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
}

func (modernDecoder) Decode(body []byte) (decodedEnvelope, error) {
	var env modernEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return decodedEnvelope{}, fmt.Errorf("decode response envelope: %w", err)
	}
	return decodedEnvelope{Success: env.IsSuccess, Message: env.Message, payload: env.Data}, nil
}

func (modernDecoder) Message(body []byte) string {
	var env modernEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return env.Message
}

// legacyDecoder handles the pre-migration envelope ({success, user} with the
// message under either "message" or "error") by extracting fields with
// JMESPath expressions instead of a fixed struct.
type legacyDecoder struct {
	successExpr string
	userExpr    string
	messageExpr string
}

func newLegacyDecoder() legacyDecoder {
	return legacyDecoder{
		successExpr: "success",
		userExpr:    "user",
		messageExpr: "message || error",
	}
}

func (d legacyDecoder) Decode(body []byte) (decodedEnvelope, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return decodedEnvelope{}, fmt.Errorf("decode response envelope: %w", err)
	}

	success, err := jmespath.Search(d.successExpr, doc)
	if err != nil {
		return decodedEnvelope{}, fmt.Errorf("evaluate %q: %w", d.successExpr, err)
	}
	ok, _ := success.(bool)

	env := decodedEnvelope{Success: ok, Message: d.messageFrom(doc)}

	user, err := jmespath.Search(d.userExpr, doc)
	if err != nil {
		return decodedEnvelope{}, fmt.Errorf("evaluate %q: %w", d.userExpr, err)
	}
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			return decodedEnvelope{}, fmt.Errorf("re-encode identity payload: %w", err)
		}
		env.payload = raw
	}
	return env, nil
}

func (d legacyDecoder) Message(body []byte) string {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	return d.messageFrom(doc)
}

func (d legacyDecoder) messageFrom(doc any) string {
	msg, err := jmespath.Search(d.messageExpr, doc)
	if err != nil {
		return ""
	}
	s, _ := msg.(string)
	return s
}
