// Package acceptance 以 go test suite 執行日 K 資料品質檢查。
//
// 預設檢查 testdata 內的資料；要檢查實際資料可指定：
//
//	BARCHECK_CONFIG=/etc/barcheck.yaml BARCHECK_DATA_DIR=/data/cn go test ./internal/acceptance
//
// 報告 CSV 寫入 BARCHECK_REPORT_DIR，未設定時寫入暫存目錄。
package acceptance
