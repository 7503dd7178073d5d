// Package owlstat summarizes OWL RDF/XML documents, such as the output of a
// ROBOT convert run. It walks the XML token stream rather than building a
// full RDF graph, so large ontologies scan cheaply.
package owlstat

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

const (
	owlNS = "http://www.w3.org/2002/07/owl#"
	rdfNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

type Stats struct {
	OntologyIRI          string `json:"ontology_iri,omitempty"`
	Classes              int    `json:"classes"`
	ObjectProperties     int    `json:"object_properties"`
	AnnotationProperties int    `json:"annotation_properties"`
	NamedIndividuals     int    `json:"named_individuals"`
	Descriptions         int    `json:"descriptions"`
}

// Scan reads an RDF/XML document and counts its OWL entity declarations.
func Scan(r io.Reader) (*Stats, error) {
	dec := xml.NewDecoder(r)
	stats := &Stats{}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan rdf/xml: %w", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch {
		case se.Name.Space == owlNS && se.Name.Local == "Class":
			stats.Classes++
		case se.Name.Space == owlNS && se.Name.Local == "ObjectProperty":
			stats.ObjectProperties++
		case se.Name.Space == owlNS && se.Name.Local == "AnnotationProperty":
			stats.AnnotationProperties++
		case se.Name.Space == owlNS && se.Name.Local == "NamedIndividual":
			stats.NamedIndividuals++
		case se.Name.Space == rdfNS && se.Name.Local == "Description":
			stats.Descriptions++
		case se.Name.Space == owlNS && se.Name.Local == "Ontology":
			if stats.OntologyIRI == "" {
				stats.OntologyIRI = about(se)
			}
		}
	}
	return stats, nil
}

// ScanFile is Scan over a local file.
func ScanFile(path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Scan(f)
}

func about(se xml.StartElement) string {
	for _, attr := range se.Attr {
		if attr.Name.Space == rdfNS && attr.Name.Local == "about" {
			return attr.Value
		}
	}
	return ""
}
