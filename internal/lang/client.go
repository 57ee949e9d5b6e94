package lang

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	serrors "github.com/Aman-CERP/sitesearch/internal/errors"
)

// ClientFileName is the generated client module written into the output
// directory.
const ClientFileName = "lunr.client.js"

const clientHeader = "// THIS FILE IS AUTOGENERATED\n" +
	"// DO NOT EDIT THIS FILE!\n" +
	"\n" +
	"import * as lunr from \"lunr\";\n"

const clientFooter = "export default lunr;\n"

// RenderClient renders the client module for plan: a banner, the library
// import, one registration statement per extension in plan order and the
// export. Output depends only on the plan.
func RenderClient(plan Plan) []byte {
	var buf bytes.Buffer
	buf.WriteString(clientHeader)
	for _, e := range plan {
		fmt.Fprintf(&buf, "require(%q)(lunr);\n", e.Name)
	}
	buf.WriteString(clientFooter)
	return buf.Bytes()
}

// writeClient replaces outDir/lunr.client.js. The content goes to a temp file
// first so readers never see a half-written module.
func writeClient(outDir string, content []byte) (string, error) {
	target := filepath.Join(outDir, ClientFileName)
	tmp, err := os.CreateTemp(outDir, "."+ClientFileName+".*")
	if err != nil {
		return "", serrors.IOError(fmt.Sprintf("failed to create %s", ClientFileName), err).
			WithDetail("path", target)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", serrors.IOError(fmt.Sprintf("failed to write %s", ClientFileName), err).
			WithDetail("path", target)
	}
	if err := tmp.Close(); err != nil {
		return "", serrors.IOError(fmt.Sprintf("failed to write %s", ClientFileName), err).
			WithDetail("path", target)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", serrors.IOError(fmt.Sprintf("failed to write %s", ClientFileName), err).
			WithDetail("path", target)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return "", serrors.IOError(fmt.Sprintf("failed to replace %s", ClientFileName), err).
			WithDetail("path", target)
	}
	return target, nil
}
