package ir

// EngineVersion is the treeq engine version reported by the CLI.
const EngineVersion = "0.1.0"
