package generator

import "encoding/xml"

// hamlNode is a generic element tree for the input markup. Only names and
// attributes matter; character data is ignored.
type hamlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []hamlNode `xml:",any"`
}

// ExtractURLs pulls reference URLs out of a HAML document: the root element's
// "context" children are scanned for "data" elements carrying a url attribute.
// Order follows document order and duplicates are kept. Malformed input or any
// deviation from that shape yields an empty slice, never an error; whether the
// strings are usable URLs is decided by the fetch stage.
func ExtractURLs(input string) []string {
	var root hamlNode
	if err := xml.Unmarshal([]byte(input), &root); err != nil {
		return nil
	}

	var urls []string
	for _, ctx := range root.Children {
		if ctx.XMLName.Local != "context" {
			continue
		}
		for _, data := range ctx.Children {
			if data.XMLName.Local != "data" {
				continue
			}
			for _, attr := range data.Attrs {
				if attr.Name.Local == "url" {
					urls = append(urls, attr.Value)
				}
			}
		}
	}
	return urls
}
