package export

import (
	"encoding/xml"
	"fmt"

	"github.com/google/uuid"
)

// Node is one level of the organization tree accumulated during assembly:
// plan → sections → lessons → matched items. Leaves carry the resource
// reference of their rendered document inside the archive.
type Node struct {
	Title      string
	Children   []*Node
	ResourceID string
	Href       string
	// AssetFiles are the archive paths of the images embedded for this
	// item's document.
	AssetFiles []string
}

func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Prune drops empty branches bottom-up: a node without a resource survives
// only if at least one descendant carries one. A plan with zero resolvable
// items prunes down to an empty organization.
func (n *Node) Prune() {
	kept := n.Children[:0]
	for _, child := range n.Children {
		child.Prune()
		if child.ResourceID != "" || len(child.Children) > 0 {
			kept = append(kept, child)
		}
	}
	n.Children = kept
}

// SCORM 2004 4th edition imsmanifest structures.

type scormManifest struct {
	XMLName       xml.Name           `xml:"manifest"`
	Identifier    string             `xml:"identifier,attr"`
	Version       string             `xml:"version,attr"`
	Xmlns         string             `xml:"xmlns,attr"`
	XmlnsADLCP    string             `xml:"xmlns:adlcp,attr"`
	Metadata      scormMetadata      `xml:"metadata"`
	Organizations scormOrganizations `xml:"organizations"`
	Resources     scormResources     `xml:"resources"`
}

type scormMetadata struct {
	Schema        string `xml:"schema"`
	SchemaVersion string `xml:"schemaversion"`
}

type scormOrganizations struct {
	Default       string              `xml:"default,attr"`
	Organizations []scormOrganization `xml:"organization"`
}

type scormOrganization struct {
	Identifier string      `xml:"identifier,attr"`
	Title      string      `xml:"title"`
	Items      []scormItem `xml:"item"`
}

type scormItem struct {
	Identifier    string      `xml:"identifier,attr"`
	IdentifierRef string      `xml:"identifierref,attr,omitempty"`
	Title         string      `xml:"title"`
	Items         []scormItem `xml:"item"`
}

type scormResources struct {
	Resources []scormResource `xml:"resource"`
}

type scormResource struct {
	Identifier string      `xml:"identifier,attr"`
	Type       string      `xml:"type,attr"`
	ScormType  string      `xml:"adlcp:scormType,attr"`
	Href       string      `xml:"href,attr"`
	Files      []scormFile `xml:"file"`
}

type scormFile struct {
	Href string `xml:"href,attr"`
}

// NewResourceID mints a fresh resource identifier. Identifiers are random
// per build; repeated exports of the same plan do not share them.
func NewResourceID() string {
	return "RES-" + uuid.NewString()
}

// BuildManifest serializes the pruned organization tree into the package
// descriptor. A tree with no items yields a valid manifest with an empty
// top-level organization.
func BuildManifest(root *Node) ([]byte, error) {
	root.Prune()

	orgID := "ORG-" + uuid.NewString()
	manifest := scormManifest{
		Identifier: "MANIFEST-" + uuid.NewString(),
		Version:    "1",
		Xmlns:      "http://www.imsglobal.org/xsd/imscp_v1p1",
		XmlnsADLCP: "http://www.adlnet.org/xsd/adlcp_v1p3",
		Metadata: scormMetadata{
			Schema:        "ADL SCORM",
			SchemaVersion: "2004 4th Edition",
		},
		Organizations: scormOrganizations{
			Default: orgID,
			Organizations: []scormOrganization{
				{
					Identifier: orgID,
					Title:      root.Title,
				},
			},
		},
	}

	var resources []scormResource
	for _, child := range root.Children {
		item := buildItem(child, &resources)
		manifest.Organizations.Organizations[0].Items = append(manifest.Organizations.Organizations[0].Items, item)
	}
	manifest.Resources.Resources = resources

	out, err := xml.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func buildItem(n *Node, resources *[]scormResource) scormItem {
	item := scormItem{
		Identifier: "ITEM-" + uuid.NewString(),
		Title:      n.Title,
	}
	if n.ResourceID != "" {
		item.IdentifierRef = n.ResourceID
		files := []scormFile{{Href: n.Href}}
		for _, asset := range n.AssetFiles {
			files = append(files, scormFile{Href: asset})
		}
		*resources = append(*resources, scormResource{
			Identifier: n.ResourceID,
			Type:       "webcontent",
			ScormType:  "sco",
			Href:       n.Href,
			Files:      files,
		})
	}
	for _, child := range n.Children {
		item.Items = append(item.Items, buildItem(child, resources))
	}
	return item
}
