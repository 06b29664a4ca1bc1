package transport

// nl80211 commands and attributes this package uses. golang.org/x/sys/unix
// only ships a subset of the NL80211_* constants (and none of the BSS_*
// dump attributes), so the remainder are named here the way mdlayher/wifi
// names the ones x/sys/unix omits.
const (
	cmdGetProtocolFeatures = 90 // NL80211_CMD_GET_PROTOCOL_FEATURES
	cmdGetReg              = 31 // NL80211_CMD_GET_REG
	cmdGetWiphy            = 1  // NL80211_CMD_GET_WIPHY
	cmdGetInterface        = 5  // NL80211_CMD_GET_INTERFACE
	cmdTriggerScan         = 33 // NL80211_CMD_TRIGGER_SCAN
	cmdStartSchedScan      = 44 // NL80211_CMD_START_SCHED_SCAN
	cmdGetScan             = 32 // NL80211_CMD_GET_SCAN
	cmdNewScanResults       = 34 // NL80211_CMD_NEW_SCAN_RESULTS
	cmdSchedScanResults     = 57 // NL80211_CMD_SCHED_SCAN_RESULTS
	cmdScanAborted          = 35 // NL80211_CMD_SCAN_ABORTED

	attrWDEV                        = 153
	attrIfindex                     = 3
	attrIfname                      = 4 // NL80211_ATTR_IFNAME
	attrWiphy                       = 1
	attrWiphyFreq                   = 38
	attrMAC                         = 6
	attrMACMask                     = 138
	attrSSID                        = 52
	attrScanSSIDs                   = 53
	attrScanFrequencies             = 54
	attrScanFlags                   = 171
	attrIE                          = 43
	attrTxNoCCKRate                 = 87
	attrScanSuppRates               = 99
	attrMeasurementDuration         = 281
	attrMeasurementDurationMandatory = 282
	attrScanStartTimeTSF            = 276
	attrMaxScanSSIDs                = 59
	attrSupportedIftypes            = 32
	attrFeatureFlags                = 198
	attrExtCapabilities             = 157
	attrWiphyBands                  = 22
	attrProtocolFeatures            = 186
	attrReg8021                     = 45 // NL80211_ATTR_REG_ALPHA2
	attrBSS                         = 46 // NL80211_ATTR_BSS

	bssBSSID                = 1
	bssFrequency             = 2
	bssCapability            = 5
	bssInformationElements   = 6
	bssSignalMBm             = 7
	bssSignalUnspec          = 8
	bssBeaconIEs             = 11
	bssPrespData             = 15
	bssParentTSF             = 17
	bssSeenMsAgo             = 16
	bssLastSeenBoottime      = 19

	featureScanFlush = 1 << 4 // NL80211_FEATURE_SCAN_FLUSH

	// NL80211_ATTR_SCAN_FLAGS (attrScanFlags) is a u32 bitmask, not a bare
	// flag: these bits combine independently.
	scanFlagFlush      = 1 << 1 // NL80211_SCAN_FLAG_FLUSH
	scanFlagRandomAddr = 1 << 3 // NL80211_SCAN_FLAG_RANDOM_ADDR
)
