package transport

import "encoding/json"

// Envelope is the wire unit sent on the streaming channel. Delivery is
// fire-and-forget: there is no acknowledgement and no sequence numbering.
type Envelope struct {
	Command string `json:"command"`
	Data    any    `json:"data"`
}

// Response is the control-plane response envelope. The robot wraps every
// payload in {code, msg, data} where a non-zero code is an application
// level failure reported by the firmware.
type Response struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// OK reports whether the robot accepted the request.
func (r *Response) OK() bool {
	return r.Code == 0
}

// ParseData unmarshals the response data into the provided struct.
func (r *Response) ParseData(v any) error {
	if r.Data == nil {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}
