package procurementflow

const (
	rootCommandUse   = "procurement-flow"
	rootCommandShort = "Retrieval-augmented procurement decision pipeline"

	runCommandUse   = "run [REQUEST]"
	runCommandShort = "Run the procurement workflow on a purchase request"

	seedCommandUse   = "seed"
	seedCommandShort = "Generate the demo corpus and load it into the vector store"

	collectionsCommandUse   = "collections"
	collectionsCommandShort = "List vector-store collections and their document counts"

	configFlagName       = "config"
	configFlagUsage      = "Path to unified config.yaml"
	requestFileFlagName  = "request-file"
	requestFileFlagUsage = "Read the purchase request from a file instead of the argument"
	samplesFlagName      = "samples"
	samplesFlagUsage     = "Refine-loop sample budget (0 = use defaults)"
	thresholdFlagName    = "threshold"
	thresholdFlagUsage   = "Refine-loop acceptance threshold"
	topKFlagName         = "top-k"
	topKFlagUsage        = "Snippets to retrieve per collection (0 = use defaults)"
	modelFlagName        = "model"
	modelFlagUsage       = "Override the default model by name (must exist in models[])"
	timeoutFlagName      = "timeout"
	timeoutFlagUsage     = "Overall workflow timeout (e.g., 90s; 0 = use defaults)"
	suppliersFlagName    = "suppliers"
	suppliersFlagUsage   = "Number of demo suppliers to generate"
	seedFlagName         = "seed"
	seedFlagUsage        = "Random seed for the demo corpus"
	exportDirFlagName    = "export-dir"
	exportDirFlagUsage   = "Also write the generated corpus to this directory"

	defaultAPIEndpoint               = "https://api.openai.com/v1"
	defaultAPIKeyEnvironmentVariable = "OPENAI_API_KEY"
	defaultSupplierCount             = 20
	defaultCorpusSeed                = 42
)

// defaultSampleRequest mirrors the demo request the pipeline was built
// around; used when no request is supplied.
const defaultSampleRequest = `We need IT servers for our Montreal data center upgrade.
Expected budget: around 40k-60k.
Delivery must be within 5 weeks.`
