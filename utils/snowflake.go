package utils

import (
	"time"

	"leave/global"

	sf "github.com/bwmarrin/snowflake"
)

const epoch = "2024-01-01"

// InitNode 初始化雪花算法节点，machineID 来自配置 app.machine_id
func InitNode(machineID int64) (err error) {
	st, err := time.Parse("2006-01-02", epoch)
	if err != nil {
		return err
	}
	sf.Epoch = st.UnixNano() / 1000000
	global.GLOAB_NODE, err = sf.NewNode(machineID)
	return err
}

// GenID 生成一个ID，节点未初始化时懒加载一个 1 号节点
func GenID() int64 {
	if global.GLOAB_NODE == nil {
		if err := InitNode(1); err != nil {
			return time.Now().UnixNano()
		}
	}
	return global.GLOAB_NODE.Generate().Int64()
}
