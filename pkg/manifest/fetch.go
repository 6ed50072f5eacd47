package manifest

import (
	"os"
	"path/filepath"

	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// WriteFetchManifest writes a throwaway package.json into dir declaring
// deps as dependencies. The installer bridge runs npm against it in a
// scratch directory.
func WriteFetchManifest(dir string, deps map[string]string) error {
	doc := []byte(`{"name":"storelink-fetch","version":"0.0.0","private":true}`)
	obj, err := marshalDeps(deps)
	if err != nil {
		return err
	}
	if doc, err = sjson.SetRawBytes(doc, fieldDependencies, obj); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), pretty.PrettyOptions(doc, prettyOptions), 0o644)
}
