package artifact

import "path/filepath"

// 产物文件名（离线训练流水线的输出约定）
const (
	FileUserWeights    = "user_weights.json"
	FileAnimeWeights   = "anime_weights.json"
	FileUserEncoded    = "user2user_encoded.json"
	FileUserDecoded    = "user2user_decoded.json"
	FileAnimeEncoded   = "anime2anime_encoded.json"
	FileAnimeDecoded   = "anime2anime_decoded.json"
	FileAnimeMetadata  = "anime_df.csv"
	FileAnimeSynopsis  = "synopsis_df.csv"
	FileRatingsHistory = "rating_df.csv"
)

// Paths 是各产物文件的完整路径。
type Paths struct {
	UserWeights  string
	AnimeWeights string
	UserEncoded  string
	UserDecoded  string
	AnimeEncoded string
	AnimeDecoded string
	Metadata     string
	Synopsis     string // 可选，文件不存在时简介为空
	Ratings      string
}

// DefaultPaths 返回 dir 目录下的默认文件布局。
func DefaultPaths(dir string) Paths {
	return Paths{
		UserWeights:  filepath.Join(dir, FileUserWeights),
		AnimeWeights: filepath.Join(dir, FileAnimeWeights),
		UserEncoded:  filepath.Join(dir, FileUserEncoded),
		UserDecoded:  filepath.Join(dir, FileUserDecoded),
		AnimeEncoded: filepath.Join(dir, FileAnimeEncoded),
		AnimeDecoded: filepath.Join(dir, FileAnimeDecoded),
		Metadata:     filepath.Join(dir, FileAnimeMetadata),
		Synopsis:     filepath.Join(dir, FileAnimeSynopsis),
		Ratings:      filepath.Join(dir, FileRatingsHistory),
	}
}
