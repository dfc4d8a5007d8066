package lifecycle

import (
	"fmt"

	"github.com/studiowebux/beeactions/internal/paramtree"
	"github.com/studiowebux/beeactions/internal/store"
	"github.com/studiowebux/beeactions/internal/types"
)

// Provenance is the authorship context of a metadata capture
type Provenance struct {
	Author string
}

// DatasetTree returns the dataset metadata as a parameter tree
func DatasetTree(info types.DatasetInfo) *paramtree.Node {
	return paramtree.Group("dataset_info", "Dataset info",
		paramtree.String("author", "Author:", info.Author),
		dateNode(info.DateTime.Format(types.DateTimeLayout)),
		paramtree.String("sample", "Sample:", info.Sample),
		paramtree.String("experiment_type", "Experiment type:", info.ExperimentType),
		paramtree.Text("description", "Description:", info.Description),
	)
}

// ScanTree returns the scan metadata as a parameter tree
func ScanTree(info types.ScanInfo) *paramtree.Node {
	return paramtree.Group("scan_info", "Scan info",
		paramtree.String("author", "Author:", info.Author),
		dateNode(info.DateTime.Format(types.DateTimeLayout)),
		&paramtree.Node{Name: "scan_type", Title: "Scan type:", Type: paramtree.TypeList, Value: info.ScanType, Visible: true},
		paramtree.String("scan_name", "Scan name:", info.ScanName).ReadOnly(),
		paramtree.Text("description", "Description:", info.Description),
	)
}

func dateNode(value string) *paramtree.Node {
	return &paramtree.Node{Name: "date_time", Title: "Date/time:", Type: paramtree.TypeDate, Value: value, Visible: true, Readonly: true}
}

// ProvenanceXML wraps the given trees in an All_settings group and serialises it
func ProvenanceXML(trees ...*paramtree.Node) (string, error) {
	root := paramtree.Group("All_settings", "All Settings")
	for _, t := range trees {
		if t != nil {
			root.Add(t)
		}
	}
	data, err := paramtree.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("serialise provenance: %w", err)
	}
	return string(data), nil
}

func datasetAttrs(info types.DatasetInfo, settings string) store.Attributes {
	return store.Attributes{
		"type":            store.StringAttr("dataset"),
		"author":          store.StringAttr(info.Author),
		"date_time":       store.StringAttr(info.DateTime.Format(types.DateTimeLayout)),
		"sample":          store.StringAttr(info.Sample),
		"experiment_type": store.StringAttr(info.ExperimentType),
		"description":     store.StringAttr(info.Description),
		"settings":        store.StringAttr(settings),
	}
}

func scanAttrs(info types.ScanInfo, settings string) store.Attributes {
	return store.Attributes{
		"type":        store.StringAttr("scan"),
		"author":      store.StringAttr(info.Author),
		"date_time":   store.StringAttr(info.DateTime.Format(types.DateTimeLayout)),
		"scan_type":   store.StringAttr(info.ScanType),
		"scan_name":   store.StringAttr(info.ScanName),
		"description": store.StringAttr(info.Description),
		"scan_done":   store.BoolAttr(false),
		"settings":    store.StringAttr(settings),
	}
}
