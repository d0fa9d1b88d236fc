package generator

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
)

const (
	// ethersScriptTag loads the signing library the inline wallet script
	// depends on.
	ethersScriptTag = `<script src="https://cdn.ethers.io/lib/ethers-5.7.2.umd.min.js" type="application/javascript"></script>`

	// stakeTokenAddress is the on-chain token contract the staking helper
	// transfers from.
	stakeTokenAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

	// stakeAmountTokens is the fixed per-stake transfer amount in whole tokens.
	stakeAmountTokens = "1"
)

// walletScript builds the inline script block defining requestAccounts() and
// the staking helper named by StakeFunction.
func walletScript() string {
	return fmt.Sprintf(`<script type="application/javascript">
const STAKE_TOKEN_ADDRESS = %q;
const STAKE_TOKEN_ABI = ["function transfer(address to, uint256 amount) returns (bool)"];
const STAKE_AMOUNT = %q;

async function requestAccounts() {
  return window.ethereum.request({ method: "eth_requestAccounts" });
}

async function %s(recipient) {
  if (!window.ethereum) {
    alert("MetaMask is not installed!");
    return;
  }
  try {
    await requestAccounts();
    const provider = new ethers.providers.Web3Provider(window.ethereum);
    const signer = provider.getSigner();
    const token = new ethers.Contract(STAKE_TOKEN_ADDRESS, STAKE_TOKEN_ABI, signer);
    const tx = await token.transfer(recipient, ethers.utils.parseUnits(STAKE_AMOUNT, 18));
    console.log("stake transaction:", tx.hash);
  } catch (err) {
    console.error("stake failed:", err);
  }
}
</script>`, stakeTokenAddress, stakeAmountTokens, StakeFunction)
}

// StripFences removes a surrounding triple-backtick code fence, with or
// without a language tag, and trims whitespace. Applying it to already-clean
// text is a no-op.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	if i := strings.IndexByte(t, '\n'); i >= 0 {
		t = t[i+1:]
	} else {
		// single-line fence marker, nothing inside
		return ""
	}
	t = strings.TrimSpace(t)
	if strings.HasSuffix(t, "```") {
		t = strings.TrimSpace(t[:len(t)-3])
	}
	return t
}

// InjectScripts turns raw model output into the final page: fences are
// stripped, markdown-only output is rendered to HTML, and the signing-library
// tag plus the inline wallet script are inserted. The two insertions are
// independent and unconditional; a missing </head> prepends the library tag
// to the document and a missing </body> appends the wallet script to the end.
func InjectScripts(raw string) string {
	doc := StripFences(raw)

	// The prompt demands pure HTML, but models occasionally answer in
	// markdown anyway; render it rather than publishing plain text.
	if !strings.Contains(doc, "<") {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(doc), &buf); err == nil {
			doc = buf.String()
		}
	}

	doc = insertBefore(doc, headClosePattern, ethersScriptTag+"\n", true)
	doc = insertBefore(doc, bodyClosePattern, walletScript()+"\n", false)
	return doc
}

var (
	headClosePattern = regexp.MustCompile(`(?i)</head>`)
	bodyClosePattern = regexp.MustCompile(`(?i)</body>`)
)

// insertBefore places fragment immediately before the first occurrence of the
// closing tag. prependFallback selects whether a missing tag puts the
// fragment at the start or the end of the document.
func insertBefore(doc string, closing *regexp.Regexp, fragment string, prependFallback bool) string {
	loc := closing.FindStringIndex(doc)
	if loc == nil {
		if prependFallback {
			return fragment + doc
		}
		return doc + "\n" + fragment
	}
	return doc[:loc[0]] + fragment + doc[loc[0]:]
}
