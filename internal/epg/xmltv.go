// SPDX-License-Identifier: MIT

// Package epg builds XMLTV documents from merged TV-guide listings.
package epg

import "encoding/xml"

// TV is the XMLTV root element.
type TV struct {
	XMLName           xml.Name    `xml:"tv"`
	Date              string      `xml:"date,attr,omitempty"`
	SourceInfoName    string      `xml:"source-info-name,attr,omitempty"`
	GeneratorInfoName string      `xml:"generator-info-name,attr,omitempty"`
	Channels          []Channel   `xml:"channel"`
	Programmes        []Programme `xml:"programme"`
}

type Channel struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"display-name"`
	Icon        *Icon  `xml:"icon"`
}

type Icon struct {
	Src string `xml:"src,attr"`
}

// Programme timestamps use the XMLTV convention: local time with a numeric
// UTC offset, e.g. "20250115210000 +0000".
type Programme struct {
	Start    string    `xml:"start,attr"`
	Stop     string    `xml:"stop,attr"`
	Channel  string    `xml:"channel,attr"`
	Title    string    `xml:"title"`
	Category string    `xml:"category,omitempty"`
	Icon     *Icon     `xml:"icon"`
	New      *struct{} `xml:"new"`
}
