package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はインデックス作成と機能紹介の初期データ投入を実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandCreateUser はAUTH_MODE=credentials用のログインユーザーを作成することを示す。
	CommandCreateUser Command = "create-user"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "create-user":
		return CommandCreateUser
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
