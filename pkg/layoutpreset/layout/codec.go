// Package layout reads and writes the raw layout field of a content node.
//
// The XML form mirrors the classic layout definition document:
//
//	<r>
//	  <d id="{device}" l="{layout}">
//	    <r id="{component}" ph="main" uid="{instance}" par="key=value" ds="{datasource}" />
//	    <p key="main" md="{settings}" />
//	  </d>
//	</r>
//
// The JSON form is a plain array of device variants.
package layout

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/tendant/layout-presets/pkg/layoutpreset"
	"golang.org/x/exp/maps"
)

// Format names accepted by NewCodec.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
)

// NewCodec returns the codec for the named format.
func NewCodec(format string) (layoutpreset.LayoutCodec, error) {
	switch strings.ToLower(format) {
	case "", FormatXML:
		return NewXMLCodec(), nil
	case FormatJSON:
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported layout format: %s", format)
	}
}

type layoutDocument struct {
	XMLName xml.Name        `xml:"r"`
	Devices []deviceElement `xml:"d"`
}

type deviceElement struct {
	ID         string             `xml:"id,attr"`
	Layout     string             `xml:"l,attr,omitempty"`
	Attrs      []xml.Attr         `xml:",any,attr"`
	Renderings []renderingElement `xml:"r"`
	Other      []rawElement       `xml:",any"`
}

type renderingElement struct {
	ID          string       `xml:"id,attr"`
	Placeholder string       `xml:"ph,attr"`
	UniqueID    string       `xml:"uid,attr"`
	Parameters  string       `xml:"par,attr,omitempty"`
	Attrs       []xml.Attr   `xml:",any,attr"`
	Other       []rawElement `xml:",any"`
}

// rawElement keeps an element the codec does not model, e.g. the <p>
// placeholder settings of a device, so it can be written back as it was read.
type rawElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}

// XMLCodec handles the XML layout document format.
type XMLCodec struct{}

// NewXMLCodec creates an XML layout codec
func NewXMLCodec() *XMLCodec {
	return &XMLCodec{}
}

// Parse decodes a raw layout document. An empty document has no devices.
// Attributes and child elements without a counterpart in the model are kept
// on the device or rendering they belong to.
func (c *XMLCodec) Parse(raw string) ([]layoutpreset.DeviceVariant, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var doc layoutDocument
	if err := xml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", layoutpreset.ErrInvalidLayout, err)
	}

	devices := make([]layoutpreset.DeviceVariant, 0, len(doc.Devices))
	for _, d := range doc.Devices {
		elements, err := encodeElements(d.Other)
		if err != nil {
			return nil, fmt.Errorf("%w: device %s: %v", layoutpreset.ErrInvalidLayout, d.ID, err)
		}
		device := layoutpreset.DeviceVariant{
			ID:         d.ID,
			LayoutID:   d.Layout,
			Renderings: make([]layoutpreset.RenderingNode, 0, len(d.Renderings)),
			Attributes: attrsToMap(d.Attrs),
			Elements:   elements,
		}
		for _, r := range d.Renderings {
			settings, err := decodeParameters(r.Parameters)
			if err != nil {
				return nil, fmt.Errorf("%w: rendering %s: %v", layoutpreset.ErrInvalidLayout, r.UniqueID, err)
			}
			elements, err := encodeElements(r.Other)
			if err != nil {
				return nil, fmt.Errorf("%w: rendering %s: %v", layoutpreset.ErrInvalidLayout, r.UniqueID, err)
			}
			device.Renderings = append(device.Renderings, layoutpreset.RenderingNode{
				ComponentRef: r.ID,
				SlotPath:     r.Placeholder,
				InstanceID:   r.UniqueID,
				Settings:     settings,
				Attributes:   attrsToMap(r.Attrs),
				Elements:     elements,
			})
		}
		devices = append(devices, device)
	}
	return devices, nil
}

// Serialize encodes devices into a raw layout document.
func (c *XMLCodec) Serialize(devices []layoutpreset.DeviceVariant) (string, error) {
	doc := layoutDocument{Devices: make([]deviceElement, 0, len(devices))}
	for _, d := range devices {
		other, err := decodeElements(d.Elements)
		if err != nil {
			return "", fmt.Errorf("failed to encode device %s: %w", d.ID, err)
		}
		device := deviceElement{
			ID:     d.ID,
			Layout: d.LayoutID,
			Attrs:  mapToAttrs(d.Attributes),
			Other:  other,
		}
		for _, r := range d.Renderings {
			other, err := decodeElements(r.Elements)
			if err != nil {
				return "", fmt.Errorf("failed to encode rendering %s: %w", r.InstanceID, err)
			}
			device.Renderings = append(device.Renderings, renderingElement{
				ID:          r.ComponentRef,
				Placeholder: r.SlotPath,
				UniqueID:    r.InstanceID,
				Parameters:  encodeParameters(r.Settings),
				Attrs:       mapToAttrs(r.Attributes),
				Other:       other,
			})
		}
		doc.Devices = append(doc.Devices, device)
	}

	out, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode layout: %w", err)
	}
	return string(out), nil
}

// attrsToMap keys attributes by local name, or by "{namespace}local" when the
// attribute is namespaced. Namespace declarations are dropped; the encoder
// writes its own.
func attrsToMap(attrs []xml.Attr) map[string]string {
	var m map[string]string
	for _, a := range attrs {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		if m == nil {
			m = make(map[string]string, len(attrs))
		}
		key := a.Name.Local
		if a.Name.Space != "" {
			key = "{" + a.Name.Space + "}" + a.Name.Local
		}
		m[key] = a.Value
	}
	return m
}

// mapToAttrs is the inverse of attrsToMap, sorted by key for stable output.
func mapToAttrs(m map[string]string) []xml.Attr {
	if len(m) == 0 {
		return nil
	}
	keys := maps.Keys(m)
	slices.Sort(keys)

	attrs := make([]xml.Attr, 0, len(keys))
	for _, key := range keys {
		name := xml.Name{Local: key}
		if strings.HasPrefix(key, "{") {
			if space, local, ok := strings.Cut(key[1:], "}"); ok {
				name = xml.Name{Space: space, Local: local}
			}
		}
		attrs = append(attrs, xml.Attr{Name: name, Value: m[key]})
	}
	return attrs
}

func encodeElements(elements []rawElement) ([]string, error) {
	if len(elements) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(elements))
	for _, el := range elements {
		raw, err := xml.Marshal(el)
		if err != nil {
			return nil, err
		}
		out = append(out, string(raw))
	}
	return out, nil
}

func decodeElements(raw []string) ([]rawElement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	elements := make([]rawElement, 0, len(raw))
	for _, r := range raw {
		var el rawElement
		if err := xml.Unmarshal([]byte(r), &el); err != nil {
			return nil, fmt.Errorf("invalid element %q: %w", r, err)
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func decodeParameters(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	settings := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			settings[k] = v[0]
		}
	}
	return settings, nil
}

func encodeParameters(settings map[string]string) string {
	if len(settings) == 0 {
		return ""
	}
	// Encode sorts by key, so output is stable.
	values := url.Values{}
	for k, v := range settings {
		values.Set(k, v)
	}
	return values.Encode()
}

// JSONCodec stores layouts as a JSON array of device variants.
type JSONCodec struct{}

// NewJSONCodec creates a JSON layout codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Parse decodes a JSON layout. An empty document has no devices.
func (c *JSONCodec) Parse(raw string) ([]layoutpreset.DeviceVariant, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var devices []layoutpreset.DeviceVariant
	if err := json.Unmarshal([]byte(raw), &devices); err != nil {
		return nil, fmt.Errorf("%w: %v", layoutpreset.ErrInvalidLayout, err)
	}
	return devices, nil
}

// Serialize encodes devices as JSON.
func (c *JSONCodec) Serialize(devices []layoutpreset.DeviceVariant) (string, error) {
	if devices == nil {
		devices = []layoutpreset.DeviceVariant{}
	}
	out, err := json.Marshal(devices)
	if err != nil {
		return "", fmt.Errorf("failed to encode layout: %w", err)
	}
	return string(out), nil
}
